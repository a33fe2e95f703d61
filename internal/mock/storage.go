package mock

import (
	"context"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

// Storage implements the storage interface for tests.
type Storage struct {
	// stored values
	StatInfoOut port.FileInfo
	ExistsOut   bool
	UploadIDOut string

	// captured inputs
	ObjectKey      string
	TTL            time.Duration
	SignedPart     int
	CompletedParts []model.CompletedPart
	CopiedSrc      string
	CopiedDest     string

	// errors
	InitBucketErr           error
	GenerateDownloadLinkErr error
	GenerateUploadLinkErr   error
	StatErr                 error
	RemoveErr               error
	CopyErr                 error
	FileExistsErr           error
	NewMultipartErr         error
	PresignPartErr          error
	CompleteMultipartErr    error
	AbortMultipartErr       error

	// call flags
	InitBucketCalled           bool
	GenerateDownloadLinkCalled bool
	GenerateUploadLinkCalled   bool
	StatCalled                 bool
	RemoveCalled               bool
	CopyCalled                 bool
	FileExistsCalled           bool
	NewMultipartCalled         bool
	PresignPartCalled          bool
	CompleteMultipartCalled    bool
	AbortMultipartCalled       bool
}

// compile-time check: *Storage must satisfy port.Storage
var _ port.Storage = (*Storage)(nil)

func (m *Storage) InitBucket(bucket string) error {
	m.InitBucketCalled = true
	return m.InitBucketErr
}

func (m *Storage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	m.GenerateDownloadLinkCalled = true
	m.ObjectKey = fileKey
	m.TTL = expiry
	if m.GenerateDownloadLinkErr != nil {
		return "", m.GenerateDownloadLinkErr
	}
	return "https://example.com/download", nil
}

func (m *Storage) GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	m.GenerateUploadLinkCalled = true
	m.ObjectKey = fileKey
	m.TTL = expiry
	if m.GenerateUploadLinkErr != nil {
		return "", m.GenerateUploadLinkErr
	}
	return "https://example.com/upload", nil
}

func (m *Storage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	m.StatCalled = true
	if m.StatErr != nil {
		return port.FileInfo{}, m.StatErr
	}
	return m.StatInfoOut, nil
}

func (m *Storage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	m.RemoveCalled = true
	return m.RemoveErr
}

func (m *Storage) CopyFile(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) error {
	m.CopyCalled = true
	m.CopiedSrc = srcKey
	m.CopiedDest = destKey
	return m.CopyErr
}

func (m *Storage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	m.FileExistsCalled = true
	if m.FileExistsErr != nil {
		return false, m.FileExistsErr
	}
	return m.ExistsOut, nil
}

func (m *Storage) NewMultipartUpload(ctx context.Context, bucket, fileKey, contentType string) (string, error) {
	m.NewMultipartCalled = true
	m.ObjectKey = fileKey
	if m.NewMultipartErr != nil {
		return "", m.NewMultipartErr
	}
	if m.UploadIDOut != "" {
		return m.UploadIDOut, nil
	}
	return "mock-upload-id", nil
}

func (m *Storage) PresignPartURL(ctx context.Context, bucket, fileKey, uploadID string, partNumber int, expiry time.Duration) (string, error) {
	m.PresignPartCalled = true
	m.SignedPart = partNumber
	m.TTL = expiry
	if m.PresignPartErr != nil {
		return "", m.PresignPartErr
	}
	return "https://example.com/part", nil
}

func (m *Storage) CompleteMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string, parts []model.CompletedPart) error {
	m.CompleteMultipartCalled = true
	m.CompletedParts = parts
	return m.CompleteMultipartErr
}

func (m *Storage) AbortMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string) error {
	m.AbortMultipartCalled = true
	return m.AbortMultipartErr
}
