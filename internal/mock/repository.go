package mock

import (
	"context"
	"database/sql"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
)

// MockIntentRepo implements intent repository operations for tests.
type MockIntentRepo struct {
	IntentRecord   *model.UploadIntent
	ExpiredIntents []*model.UploadIntent

	GetErr    error
	CreateErr error
	UpdateErr error
	ListErr   error

	GetCalled bool
	Created   *model.UploadIntent
	Updated   *model.UploadIntent
}

func (m *MockIntentRepo) Create(ctx context.Context, intent *model.UploadIntent) error {
	m.Created = intent
	return m.CreateErr
}

func (m *MockIntentRepo) GetByID(ctx context.Context, id db.UUID) (*model.UploadIntent, error) {
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.IntentRecord == nil {
		return nil, sql.ErrNoRows
	}
	return m.IntentRecord, nil
}

func (m *MockIntentRepo) Update(ctx context.Context, intent *model.UploadIntent) error {
	m.Updated = intent
	return m.UpdateErr
}

func (m *MockIntentRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.UploadIntent, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.ExpiredIntents, nil
}

// MockSessionRepo implements multipart session repository operations for tests.
type MockSessionRepo struct {
	SessionRecord *model.MultipartSession

	GetErr    error
	CreateErr error
	DeleteErr error

	GetCalled    bool
	Created      *model.MultipartSession
	DeleteCalled bool
	DeletedID    db.UUID
}

func (m *MockSessionRepo) Create(ctx context.Context, session *model.MultipartSession) error {
	m.Created = session
	return m.CreateErr
}

func (m *MockSessionRepo) GetByIntentID(ctx context.Context, intentID db.UUID) (*model.MultipartSession, error) {
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.SessionRecord == nil {
		return nil, sql.ErrNoRows
	}
	return m.SessionRecord, nil
}

func (m *MockSessionRepo) Delete(ctx context.Context, intentID db.UUID) error {
	m.DeleteCalled = true
	m.DeletedID = intentID
	return m.DeleteErr
}

// MockAssetRepo implements asset repository operations for tests. ApplyEvent
// mirrors the production contract: a key already in the processed-event log
// is a silent no-op.
type MockAssetRepo struct {
	AssetRecord *model.MediaAsset

	GetErr         error
	GetByKeyErr    error
	CreateErr      error
	ApplyErr       error
	GetCalled      bool
	GetByKeyCalled bool
	Created        *model.MediaAsset
	AppliedKeys    []string
}

func (m *MockAssetRepo) Create(ctx context.Context, asset *model.MediaAsset) error {
	m.Created = asset
	return m.CreateErr
}

func (m *MockAssetRepo) GetByID(ctx context.Context, id db.UUID) (*model.MediaAsset, error) {
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.AssetRecord == nil {
		return nil, sql.ErrNoRows
	}
	return m.AssetRecord, nil
}

func (m *MockAssetRepo) GetByObjectKey(ctx context.Context, objectKey string) (*model.MediaAsset, error) {
	m.GetByKeyCalled = true
	if m.GetByKeyErr != nil {
		return nil, m.GetByKeyErr
	}
	if m.AssetRecord == nil || m.AssetRecord.ObjectKey != objectKey {
		return nil, sql.ErrNoRows
	}
	return m.AssetRecord, nil
}

func (m *MockAssetRepo) ApplyEvent(ctx context.Context, id db.UUID, eventKey string, apply func(*model.MediaAsset) error) (bool, error) {
	if m.ApplyErr != nil {
		return false, m.ApplyErr
	}
	if m.AssetRecord == nil {
		return false, sql.ErrNoRows
	}
	if m.AssetRecord.ProcessedEvents.Contains(eventKey) {
		return false, nil
	}
	if err := apply(m.AssetRecord); err != nil {
		return false, err
	}
	m.AssetRecord.ProcessedEvents = append(m.AssetRecord.ProcessedEvents, eventKey)
	m.AppliedKeys = append(m.AppliedKeys, eventKey)
	return true, nil
}
