package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory ObjectStore with the same contract as the
// MinIO-backed one: silent overwrite, idempotent delete, all-or-nothing
// listing. It backs tests that exercise document semantics without a
// running store.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject

	// failWith, when set, makes every network-shaped call fail. It models
	// an unreachable or misconfigured store.
	failWith error
}

type memoryObject struct {
	data         []byte
	contentType  string
	metadata     map[string]string
	lastModified time.Time
}

// NewMemory returns an empty in-memory store for the named container.
func NewMemory(container string) *MemoryStore {
	return &MemoryStore{
		bucket:  container,
		objects: make(map[string]memoryObject),
	}
}

// FailWith makes all subsequent calls return err; passing nil restores
// normal operation.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MemoryStore) List(ctx context.Context) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	infos := make([]ObjectInfo, 0, len(keys))
	for _, k := range keys {
		obj := m.objects[k]
		infos = append(infos, ObjectInfo{
			Key:          k,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.lastModified,
			Metadata:     obj.metadata,
		})
	}
	return infos, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return ObjectInfo{}, m.failWith
	}

	now := time.Now().UTC()
	m.objects[key] = memoryObject{
		data:         data,
		contentType:  opt.ContentType,
		metadata:     opt.Metadata,
		lastModified: now,
	}
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  opt.ContentType,
		LastModified: now,
		Metadata:     opt.Metadata,
	}, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, ObjectInfo{}, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}

	obj, ok := m.objects[key]
	if !ok {
		return nil, ObjectInfo{}, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	info := ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.lastModified,
		Metadata:     obj.metadata,
	}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

// Delete removes the object if present and succeeds regardless.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return m.ObjectURL(key) + "?expires=" + expiry.String(), nil
}

func (m *MemoryStore) ObjectURL(key string) string {
	return "mem://" + m.bucket + "/" + url.PathEscape(key)
}

var _ ObjectStore = (*MemoryStore)(nil)
