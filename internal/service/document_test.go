package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"hrdocs/internal/model"
	repoMocks "hrdocs/internal/repository/mocks"
	"hrdocs/internal/storage"
	storeMocks "hrdocs/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		docName    string
		size       int64
		maxBytes   int64
		setupMocks func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path",
			docName:  "policy.pdf",
			size:     11,
			maxBytes: 1 << 20,
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Put", ctx, "policy.pdf", r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "application/pdf",
				}).Return(storage.ObjectInfo{
					Key:          "policy.pdf",
					Size:         11,
					ContentType:  "application/pdf",
					LastModified: time.Now(),
				}, nil)
				mStore.On("ObjectURL", "policy.pdf").Return("http://store/hr-documents/policy.pdf")
				mAudit.On("Record", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
					return e.Action == model.AuditActionUpload && e.DocumentName == "policy.pdf" && e.Size == 11
				})).Return(nil)
				return r
			},
		},
		{
			name:    "empty name rejected before any storage call",
			docName: "",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: ErrInvalidName,
		},
		{
			name:    "control character in name rejected",
			docName: "bad\x00name.pdf",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: ErrInvalidName,
		},
		{
			name:    "nil reader rejected",
			docName: "policy.pdf",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:     "payload over policy bound rejected before upload",
			docName:  "huge.bin",
			size:     2048,
			maxBytes: 1024,
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: ErrPayloadTooLarge,
		},
		{
			name:     "unknown size rejected",
			docName:  "stream.bin",
			size:     -1,
			maxBytes: 1024,
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				return strings.NewReader("x")
			},
			wantErr: ErrSizeRequired,
		},
		{
			name:     "transport failure normalized to store unavailable",
			docName:  "policy.pdf",
			size:     5,
			maxBytes: 1 << 20,
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, "policy.pdf", r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("connection refused"))
				return r
			},
			wantErr:    ErrStoreUnavailable,
			wantErrMsg: "connection refused",
		},
		{
			name:     "audit failure does not fail the upload",
			docName:  "policy.pdf",
			size:     5,
			maxBytes: 1 << 20,
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, "policy.pdf", r, mock.Anything).
					Return(storage.ObjectInfo{Key: "policy.pdf", Size: 5}, nil)
				mStore.On("ObjectURL", "policy.pdf").Return("http://store/hr-documents/policy.pdf")
				mAudit.On("Record", ctx, mock.Anything).Return(errors.New("audit db down"))
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockObjectStore)
			mAudit := new(repoMocks.MockAuditRepository)
			svc := NewDocumentService(mStore, mAudit, tt.maxBytes)

			r := tt.setupMocks(mStore, mAudit)

			doc, err := svc.Upload(ctx, tt.docName, r, tt.size, "application/pdf")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				assert.Equal(t, tt.docName, doc.Name)
				assert.Equal(t, tt.docName, doc.ID)
				assert.NotEmpty(t, doc.URL)
			}

			mStore.AssertExpectations(t)
			mAudit.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps objects to records", func(t *testing.T) {
		mStore := new(storeMocks.MockObjectStore)
		now := time.Now().UTC()
		mStore.On("List", ctx).Return([]storage.ObjectInfo{
			{Key: "a.pdf", Size: 10, LastModified: now},
			{Key: "b.pdf", Size: 20, LastModified: now},
		}, nil)
		mStore.On("ObjectURL", "a.pdf").Return("http://store/hr-documents/a.pdf")
		mStore.On("ObjectURL", "b.pdf").Return("http://store/hr-documents/b.pdf")

		svc := NewDocumentService(mStore, nil, 0)
		res, err := svc.List(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, "a.pdf", res.Items[0].ID)
		assert.Equal(t, "http://store/hr-documents/b.pdf", res.Items[1].URL)
		mStore.AssertExpectations(t)
	})

	t.Run("enumeration failure yields no partial result", func(t *testing.T) {
		mStore := new(storeMocks.MockObjectStore)
		mStore.On("List", ctx).Return(nil, errors.New("expired credential"))

		svc := NewDocumentService(mStore, nil, 0)
		res, err := svc.List(ctx)

		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Nil(t, res)
		mStore.AssertExpectations(t)
	})

	t.Run("caller cancellation passes through", func(t *testing.T) {
		mStore := new(storeMocks.MockObjectStore)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		mStore.On("List", cancelled).Return(nil, context.Canceled)

		svc := NewDocumentService(mStore, nil, 0)
		_, err := svc.List(cancelled)

		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		docName    string
		setupMocks func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository)
		wantErr    error
	}{
		{
			name:    "happy path",
			docName: "old.pdf",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) {
				mStore.On("Delete", ctx, "old.pdf").Return(nil)
				mAudit.On("Record", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
					return e.Action == model.AuditActionDelete && e.DocumentName == "old.pdf"
				})).Return(nil)
			},
		},
		{
			name:       "empty name rejected",
			docName:    "",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) {},
			wantErr:    ErrInvalidName,
		},
		{
			name:    "absent object still succeeds",
			docName: "never-existed.pdf",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) {
				// The adapter reports success for absent keys.
				mStore.On("Delete", ctx, "never-existed.pdf").Return(nil)
				mAudit.On("Record", ctx, mock.Anything).Return(nil)
			},
		},
		{
			name:    "transport failure normalized",
			docName: "old.pdf",
			setupMocks: func(mStore *storeMocks.MockObjectStore, mAudit *repoMocks.MockAuditRepository) {
				mStore.On("Delete", ctx, "old.pdf").Return(errors.New("503 from store"))
			},
			wantErr: ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockObjectStore)
			mAudit := new(repoMocks.MockAuditRepository)
			svc := NewDocumentService(mStore, mAudit, 0)

			tt.setupMocks(mStore, mAudit)

			err := svc.Delete(ctx, tt.docName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mAudit.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("missing object surfaces not found", func(t *testing.T) {
		mStore := new(storeMocks.MockObjectStore)
		mStore.On("Get", ctx, "ghost.pdf").
			Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)

		svc := NewDocumentService(mStore, nil, 0)
		rc, doc, err := svc.Download(ctx, "ghost.pdf")

		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
		assert.Nil(t, rc)
		assert.Nil(t, doc)
	})

	t.Run("transport failure normalized", func(t *testing.T) {
		mStore := new(storeMocks.MockObjectStore)
		mStore.On("Get", ctx, "policy.pdf").
			Return(nil, storage.ObjectInfo{}, errors.New("tls handshake failed"))

		svc := NewDocumentService(mStore, nil, 0)
		_, _, err := svc.Download(ctx, "policy.pdf")

		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestAuditFailureIsLogged(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	orig := auditLogOutput
	auditLogOutput = &buf
	defer func() { auditLogOutput = orig }()

	mStore := new(storeMocks.MockObjectStore)
	mAudit := new(repoMocks.MockAuditRepository)
	mStore.On("Delete", ctx, "old.pdf").Return(nil)
	mAudit.On("Record", ctx, mock.Anything).Return(errors.New("audit db down"))

	svc := NewDocumentService(mStore, mAudit, 0)
	require.NoError(t, svc.Delete(ctx, "old.pdf"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "audit_record_failed", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, model.AuditActionDelete, entry["action"])
	assert.Equal(t, "old.pdf", entry["document_name"])
	assert.Contains(t, entry["error"], "audit db down")
	assert.NotEmpty(t, entry["ts"])
}

func TestOperatorContext(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Operator{}, OperatorFromContext(ctx))

	op := Operator{Actor: "admin", RequestID: "req-1"}
	ctx = WithOperator(ctx, op)
	assert.Equal(t, op, OperatorFromContext(ctx))
}
