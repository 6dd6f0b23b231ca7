package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"hrdocs/internal/config"
)

// minioStore implements ObjectStore against an S3-compatible backend
// (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple
// goroutines; the only fields are the client and the container name, both
// fixed at construction.
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates the object store client for the configured container.
// It validates connectivity and ensures the container exists (creates it if
// missing). The configuration is immutable for the process lifetime.
func NewMinIO(cfg config.StorageConfig) (ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccountName == "" || cfg.AccountKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}
	if cfg.Container == "" {
		return nil, fmt.Errorf("storage container is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccountName, cfg.AccountKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	ms := &minioStore{client: cli, bucket: cfg.Container}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("check container existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Container, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create container: %w", err)
		}
	}

	return ms, nil
}

// List enumerates the container. Any error observed mid-enumeration aborts
// the whole call; callers never see a partial listing. Recursive, so keys
// containing "/" come back as objects rather than collapsed prefixes.
func (m *minioStore) List(ctx context.Context) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return objects, nil
}

// Put uploads an object using streaming I/O only (no local disk).
func (m *minioStore) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	putOpts := minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, putOpts)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: time.Now(), // PutObject's response carries no LastModified
		Metadata:     opt.Metadata,
	}, nil
}

// Get downloads object content as a ReadCloser along with basic info.
func (m *minioStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	// Stat to populate info without reading content into memory; this is
	// also where a missing key surfaces.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ObjectInfo{}, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}
	return obj, info, nil
}

// Delete removes an object by key. The backend treats removal of an absent
// key as success, which keeps deletion idempotent.
func (m *minioStore) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return err
}

// PresignGet generates a pre-signed URL for GET with the specified expiry.
func (m *minioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// ObjectURL builds the deterministic object address endpoint/container/key.
func (m *minioStore) ObjectURL(key string) string {
	u := *m.client.EndpointURL()
	u.Path = path.Join("/", m.bucket, key)
	return u.String()
}
