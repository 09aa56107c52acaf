package identity

import (
	"context"
	"time"
)

// AvatarStorage abstracts the object store holding profile avatars.
// The infrastructure layer provides the S3 implementation.
type AvatarStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading an object.
	// Returns the upload URL and its expiration time.
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading an object.
	// Returns the download URL and its expiration time.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
