package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"hrdocs/internal/model"
	"hrdocs/internal/repository"
	"hrdocs/internal/storage"
)

// Failure taxonomy for document operations. Every storage transport, auth,
// or service-side failure is wrapped with ErrStoreUnavailable; input
// problems are rejected before any network call is made.
var (
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrPayloadTooLarge  = errors.New("payload exceeds configured maximum")
	ErrInvalidName      = errors.New("invalid document name")
	ErrSizeRequired     = errors.New("payload size is required")
	ErrReaderNil        = errors.New("reader is nil")
)

// DocumentListResult is the service-level DTO for document listings.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the document operations surface: stateless
// request/response calls against the external object store. No operation
// retries, caches, or spawns background work; cancellation flows from the
// caller's context into the store call.
type DocumentService interface {
	// List returns every document in the container, in whatever order the
	// store enumerates them. On failure no partial result is returned.
	List(ctx context.Context) (*DocumentListResult, error)

	// Upload stores the payload under name, overwriting silently if the name
	// already exists (last write wins, no versioning).
	Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (*model.Document, error)

	// Download streams the stored payload. Returns storage.ErrObjectNotFound
	// when no object exists under name.
	Download(ctx context.Context, name string) (io.ReadCloser, *model.Document, error)

	// PresignedURL returns a time-limited download link for the object.
	PresignedURL(ctx context.Context, name string, expiry time.Duration) (string, error)

	// Delete removes the object if present and succeeds if already absent.
	Delete(ctx context.Context, name string) error
}

// documentService is the concrete implementation backed by an ObjectStore
// and an optional audit trail.
type documentService struct {
	store    storage.ObjectStore
	audit    repository.AuditRepository
	maxBytes int64
}

// NewDocumentService constructs a DocumentService. audit may be nil, in
// which case no trail is written. maxBytes bounds upload payloads; zero or
// negative disables the bound.
func NewDocumentService(store storage.ObjectStore, audit repository.AuditRepository, maxBytes int64) DocumentService {
	return &documentService{store: store, audit: audit, maxBytes: maxBytes}
}

func (s *documentService) List(ctx context.Context) (*DocumentListResult, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, storeFailure("list documents", err)
	}

	items := make([]model.Document, 0, len(objects))
	for _, obj := range objects {
		items = append(items, s.toDocument(obj))
	}
	return &DocumentListResult{Items: items, Total: len(items)}, nil
}

func (s *documentService) Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (*model.Document, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReaderNil
	}
	if size < 0 {
		return nil, ErrSizeRequired
	}
	// Policy bound, enforced before any storage call; the store itself does
	// not enforce it.
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, size, s.maxBytes)
	}

	info, err := s.store.Put(ctx, name, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		return nil, storeFailure("upload to store", err)
	}

	doc := s.toDocument(info)
	s.recordAudit(ctx, model.AuditActionUpload, name, info.Size)
	return &doc, nil
}

func (s *documentService) Download(ctx context.Context, name string) (io.ReadCloser, *model.Document, error) {
	if err := validateName(name); err != nil {
		return nil, nil, err
	}
	rc, info, err := s.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, err
		}
		return nil, nil, storeFailure("download from store", err)
	}
	doc := s.toDocument(info)
	return rc, &doc, nil
}

func (s *documentService) PresignedURL(ctx context.Context, name string, expiry time.Duration) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, name, expiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", err
		}
		return "", storeFailure("presign download", err)
	}
	return u, nil
}

// Delete is idempotent: removing an absent name succeeds.
func (s *documentService) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return storeFailure("delete from store", err)
	}
	s.recordAudit(ctx, model.AuditActionDelete, name, 0)
	return nil
}

// recordAudit appends to the trail best-effort. A failed audit write never
// fails the document operation; the operation already happened at the store.
func (s *documentService) recordAudit(ctx context.Context, action, name string, size int64) {
	if s.audit == nil {
		return
	}
	op := OperatorFromContext(ctx)
	event := &model.AuditEvent{
		ID:           uuid.NewString(),
		Actor:        op.Actor,
		Action:       action,
		DocumentName: name,
		Size:         size,
		RequestID:    op.RequestID,
		OccurredAt:   time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		logAuditFailure(action, name, err)
	}
}

func (s *documentService) toDocument(obj storage.ObjectInfo) model.Document {
	return model.Document{
		ID:          obj.Key,
		Name:        obj.Key,
		Size:        obj.Size,
		ContentType: obj.ContentType,
		UploadedAt:  obj.LastModified,
		URL:         s.store.ObjectURL(obj.Key),
	}
}

// validateName rejects empty names and names the key namespace reserves:
// control characters and a leading slash. Anything beyond that is the
// caller's responsibility.
func validateName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if name[0] == '/' {
		return fmt.Errorf("%w: leading slash", ErrInvalidName)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: control character", ErrInvalidName)
		}
	}
	return nil
}

// storeFailure normalizes heterogeneous storage errors into the
// ErrStoreUnavailable taxonomy while keeping the cause in the chain.
// Context cancellation passes through untouched so callers can distinguish
// their own timeouts from store failures.
func storeFailure(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}
