// Package storage keeps uploaded media in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/and161185/inkwell/internal/config"
)

// Minio wraps the MinIO SDK client and bucket name.
type Minio struct {
	client *minio.Client
	bucket string
	base   string
}

// NewMinio constructs a MinIO client from config. It does not contact the server.
func NewMinio(cfg config.MinioConfig) (*Minio, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &Minio{
		client: client,
		bucket: cfg.Bucket,
		base:   scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket + "/",
	}, nil
}

// EnsureBucket creates the configured bucket if it is missing.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// Put uploads an object to the configured bucket.
func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Delete removes an object from the configured bucket.
func (m *Minio) Delete(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

// URL is the path-style address of key.
func (m *Minio) URL(key string) string {
	return m.base + (&url.URL{Path: key}).EscapedPath()
}

// Bucket returns the configured bucket name.
func (m *Minio) Bucket() string {
	return m.bucket
}
