// Package storage provides S3-compatible object storage for lead documents.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURL carries a time-limited URL for a direct download.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore is the storage surface the document handlers depend on.
type ObjectStore interface {
	// UploadFile streams a file into the bucket under the given folder and
	// returns the full object key.
	UploadFile(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// GenerateDownloadURL creates a presigned URL for downloading an object.
	GenerateDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)

	// DeleteObject removes an object from the bucket.
	DeleteObject(ctx context.Context, fileKey string) error

	// EnsureBucketExists creates the bucket if it does not exist.
	EnsureBucketExists(ctx context.Context) error

	// ValidateContentType checks whether the content type may be uploaded.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks the size against the configured limit.
	ValidateFileSize(sizeBytes int64) error

	// MaxFileSize returns the configured upload size limit in bytes.
	MaxFileSize() int64
}

// Options configures the MinIO-backed object store.
type Options struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	MaxFileSize int64
}
