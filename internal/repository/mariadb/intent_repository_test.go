package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/google/uuid"
)

var (
	testIntentID = db.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"))
	testOwnerID  = db.UUID(uuid.MustParse("11111111-2222-3333-4444-555555555555"))
)

func newIntentMock(t *testing.T) (*IntentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	return NewIntentRepository(sqlDB), mock, func() { _ = sqlDB.Close() }
}

func TestIntentRepository_Create_Success(t *testing.T) {
	repo, mock, closeDB := newIntentMock(t)
	defer closeDB()

	now := time.Now().UTC()
	intent := &model.UploadIntent{
		ID:               testIntentID,
		OwnerID:          testOwnerID,
		ObjectKey:        "owner/123_v.mp4",
		Filename:         "v.mp4",
		DeclaredSize:     250 << 20,
		DeclaredMimeType: "video/mp4",
		Status:           model.IntentStatusPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(time.Hour),
	}

	mock.ExpectExec(regexp.QuoteMeta(`
      INSERT INTO upload_intents
        (id, owner_id, object_key, filename, declared_size, declared_mime_type, status, created_at, expires_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)).
		WithArgs(
			intent.ID, intent.OwnerID, intent.ObjectKey,
			intent.Filename, intent.DeclaredSize, intent.DeclaredMimeType,
			intent.Status, intent.CreatedAt, intent.ExpiresAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), intent); err != nil {
		t.Errorf("Create() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestIntentRepository_GetByID_NoRows(t *testing.T) {
	repo, mock, closeDB := newIntentMock(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id, owner_id, object_key").
		WithArgs(testIntentID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testIntentID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestIntentRepository_Update_Success(t *testing.T) {
	repo, mock, closeDB := newIntentMock(t)
	defer closeDB()

	intent := &model.UploadIntent{ID: testIntentID, Status: model.IntentStatusCompleted}

	mock.ExpectExec(regexp.QuoteMeta(`
      UPDATE upload_intents
      SET status = ?
      WHERE id = ?
    `)).
		WithArgs(intent.Status, intent.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), intent); err != nil {
		t.Errorf("Update() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestIntentRepository_ListExpiredPending_Success(t *testing.T) {
	repo, mock, closeDB := newIntentMock(t)
	defer closeDB()

	now := time.Now().UTC()
	idBytes, _ := uuid.UUID(testIntentID).MarshalBinary()
	ownerBytes, _ := uuid.UUID(testOwnerID).MarshalBinary()

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "object_key", "filename", "declared_size",
		"declared_mime_type", "status", "created_at", "expires_at",
	}).AddRow(
		idBytes, ownerBytes, "owner/123_v.mp4", "v.mp4", int64(250<<20),
		"video/mp4", string(model.IntentStatusPending), now.Add(-2*time.Hour), now.Add(-time.Hour),
	)

	mock.ExpectQuery("SELECT id, owner_id, object_key, filename, declared_size, declared_mime_type, status, created_at, expires_at\\s+FROM upload_intents\\s+WHERE status = \\? AND expires_at < \\?").
		WithArgs(model.IntentStatusPending, now, 500).
		WillReturnRows(rows)

	intents, err := repo.ListExpiredPending(context.Background(), now, 500)
	if err != nil {
		t.Fatalf("ListExpiredPending() returned unexpected error: %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(intents))
	}
	if intents[0].ID != testIntentID || intents[0].Status != model.IntentStatusPending {
		t.Errorf("unexpected intent: %+v", intents[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestIntentRepository_ListExpiredPending_Empty(t *testing.T) {
	repo, mock, closeDB := newIntentMock(t)
	defer closeDB()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, owner_id, object_key").
		WithArgs(model.IntentStatusPending, now, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "object_key", "filename", "declared_size",
			"declared_mime_type", "status", "created_at", "expires_at",
		}))

	intents, err := repo.ListExpiredPending(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("ListExpiredPending() returned unexpected error: %v", err)
	}
	if len(intents) != 0 {
		t.Errorf("expected no intents, got %d", len(intents))
	}
}
