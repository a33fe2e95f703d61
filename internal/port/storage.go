package port

import (
	"context"
	"errors"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
)

var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrUploadNotFound = errors.New("storage: multipart upload not found")
	ErrUnauthorized   = errors.New("storage: unauthorized")
	ErrInternal       = errors.New("storage: internal error")
)

// FileInfo represents metadata about a stored object.
type FileInfo struct {
	SizeBytes   int64
	ContentType string
	ETag        string
}

// Storage defines object store operations. Bytes never flow through the
// application: uploads happen against presigned URLs issued here.
type Storage interface {
	InitBucket(bucket string) error
	GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error)
	FileExists(ctx context.Context, bucket, fileKey string) (bool, error)
	StatFile(ctx context.Context, bucket, fileKey string) (FileInfo, error)
	RemoveFile(ctx context.Context, bucket, fileKey string) error
	CopyFile(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) error

	// multipart session operations, performed server-side against the provider
	NewMultipartUpload(ctx context.Context, bucket, fileKey, contentType string) (string, error)
	PresignPartURL(ctx context.Context, bucket, fileKey, uploadID string, partNumber int, expiry time.Duration) (string, error)
	CompleteMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string, parts []model.CompletedPart) error
	AbortMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string) error
}
