package upload

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type mockIntents struct {
	record    *model.UploadIntent
	expired   []*model.UploadIntent
	getErr    error
	createErr error
	updateErr error
	listErr   error
	created   *model.UploadIntent
	updated   *model.UploadIntent
}

func (m *mockIntents) Create(ctx context.Context, intent *model.UploadIntent) error {
	m.created = intent
	return m.createErr
}
func (m *mockIntents) GetByID(ctx context.Context, id db.UUID) (*model.UploadIntent, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.record == nil {
		return nil, sql.ErrNoRows
	}
	return m.record, nil
}
func (m *mockIntents) Update(ctx context.Context, intent *model.UploadIntent) error {
	m.updated = intent
	return m.updateErr
}
func (m *mockIntents) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.UploadIntent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.expired, nil
}

type mockSessions struct {
	record    *model.MultipartSession
	createErr error
	deleteErr error
	created   *model.MultipartSession
	deletedID db.UUID
	deleted   bool
}

func (m *mockSessions) Create(ctx context.Context, session *model.MultipartSession) error {
	m.created = session
	return m.createErr
}
func (m *mockSessions) GetByIntentID(ctx context.Context, intentID db.UUID) (*model.MultipartSession, error) {
	if m.record == nil {
		return nil, sql.ErrNoRows
	}
	return m.record, nil
}
func (m *mockSessions) Delete(ctx context.Context, intentID db.UUID) error {
	m.deleted = true
	m.deletedID = intentID
	return m.deleteErr
}

type mockAssets struct {
	created   *model.MediaAsset
	createErr error
}

func (m *mockAssets) Create(ctx context.Context, asset *model.MediaAsset) error {
	m.created = asset
	return m.createErr
}
func (m *mockAssets) GetByID(ctx context.Context, id db.UUID) (*model.MediaAsset, error) {
	panic("not used")
}
func (m *mockAssets) GetByObjectKey(ctx context.Context, objectKey string) (*model.MediaAsset, error) {
	panic("not used")
}
func (m *mockAssets) ApplyEvent(ctx context.Context, id db.UUID, eventKey string, apply func(*model.MediaAsset) error) (bool, error) {
	panic("not used")
}

type mockStorage struct {
	statInfo     port.FileInfo
	statErr      error
	presignErr   error
	newUploadErr error
	completeErr  error
	abortErr     error

	uploadID string

	newUploadCalled bool
	completeCalled  bool
	abortCalled     bool
	completedParts  []model.CompletedPart
	signedPart      int
}

func (m *mockStorage) InitBucket(bucket string) error { panic("not used") }
func (m *mockStorage) GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return "https://store.example/" + bucket + "/" + fileKey + "?sig=abc", nil
}
func (m *mockStorage) GeneratePresignedDownloadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error) {
	panic("not used")
}
func (m *mockStorage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	panic("not used")
}
func (m *mockStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	return m.statInfo, m.statErr
}
func (m *mockStorage) RemoveFile(ctx context.Context, bucket, fileKey string) error {
	panic("not used")
}
func (m *mockStorage) CopyFile(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) error {
	panic("not used")
}
func (m *mockStorage) NewMultipartUpload(ctx context.Context, bucket, fileKey, contentType string) (string, error) {
	m.newUploadCalled = true
	if m.newUploadErr != nil {
		return "", m.newUploadErr
	}
	if m.uploadID == "" {
		m.uploadID = "upld-1"
	}
	return m.uploadID, nil
}
func (m *mockStorage) PresignPartURL(ctx context.Context, bucket, fileKey, uploadID string, partNumber int, expiry time.Duration) (string, error) {
	m.signedPart = partNumber
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return fmt.Sprintf("https://store.example/%s/%s?partNumber=%d&uploadId=%s", bucket, fileKey, partNumber, uploadID), nil
}
func (m *mockStorage) CompleteMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string, parts []model.CompletedPart) error {
	m.completeCalled = true
	m.completedParts = parts
	return m.completeErr
}
func (m *mockStorage) AbortMultipartUpload(ctx context.Context, bucket, fileKey, uploadID string) error {
	m.abortCalled = true
	return m.abortErr
}

type mockLimiter struct {
	allowed bool
	err     error
	key     string
}

func (m *mockLimiter) Allow(ctx context.Context, ownerKey string) (bool, error) {
	m.key = ownerKey
	return m.allowed, m.err
}

func testConfig() Config {
	return Config{
		Bucket:             "uploads",
		IntentTTL:          time.Hour,
		UploadURLExpiry:    5 * time.Minute,
		PartURLExpiry:      5 * time.Minute,
		MultipartThreshold: 10 << 20,
		MinPartSize:        5 << 20,
		MaxParts:           10000,
	}
}
