package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/google/uuid"
)

func newSessionMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	return NewSessionRepository(sqlDB), mock, func() { _ = sqlDB.Close() }
}

func TestSessionRepository_Create_Success(t *testing.T) {
	repo, mock, closeDB := newSessionMock(t)
	defer closeDB()

	session := &model.MultipartSession{
		IntentID:   testIntentID,
		UploadID:   "provider-upload-id",
		PartSize:   8 << 20,
		TotalParts: 12,
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO multipart_sessions`)).
		WithArgs(session.IntentID, session.UploadID, session.PartSize, session.TotalParts, session.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), session); err != nil {
		t.Errorf("Create() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_GetByIntentID_Success(t *testing.T) {
	repo, mock, closeDB := newSessionMock(t)
	defer closeDB()

	idBytes, err := uuid.UUID(testIntentID).MarshalBinary()
	if err != nil {
		t.Fatalf("marshal intent id: %v", err)
	}
	rows := sqlmock.NewRows([]string{"intent_id", "upload_id", "part_size", "total_parts", "created_at"}).
		AddRow(idBytes, "provider-upload-id", int64(8<<20), 12, time.Now().UTC())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT intent_id, upload_id, part_size, total_parts, created_at`)).
		WithArgs(testIntentID).
		WillReturnRows(rows)

	session, err := repo.GetByIntentID(context.Background(), testIntentID)
	if err != nil {
		t.Fatalf("GetByIntentID() returned unexpected error: %v", err)
	}
	if session.UploadID != "provider-upload-id" {
		t.Errorf("expected upload id %q, got %q", "provider-upload-id", session.UploadID)
	}
	if session.TotalParts != 12 {
		t.Errorf("expected 12 parts, got %d", session.TotalParts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_GetByIntentID_NotFound(t *testing.T) {
	repo, mock, closeDB := newSessionMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT intent_id, upload_id, part_size, total_parts, created_at`)).
		WithArgs(testIntentID).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByIntentID(context.Background(), testIntentID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_Delete_Success(t *testing.T) {
	repo, mock, closeDB := newSessionMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM multipart_sessions WHERE intent_id = ?`)).
		WithArgs(testIntentID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), testIntentID); err != nil {
		t.Errorf("Delete() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
