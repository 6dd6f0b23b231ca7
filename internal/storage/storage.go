package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage wraps the external object store behind a small interface.
// Implementations hold no document state of their own; every call is a
// network round-trip (or, for the in-memory store, a map lookup) and the
// store remains the single source of truth.

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// ObjectStore is the contract against the configured document container.
// Methods use context and streaming readers; no local disk is used.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// List enumerates every object in the container. The order is whatever
	// the backend yields. On any enumeration error no partial result is
	// returned.
	List(ctx context.Context) ([]ObjectInfo, error)
	// Put uploads an object under the given key, overwriting silently if the
	// key already exists.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its
	// info. Returns ErrObjectNotFound when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL usable without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// ObjectURL derives the object's address from the configured endpoint,
	// container, and key. Purely computational; it does not check existence.
	ObjectURL(key string) string
}
