package mariadb

import (
	"context"
	"database/sql"
	"log"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type SessionRepository struct {
	db *sql.DB
}

// compile-time check: *SessionRepository must satisfy port.SessionRepository
var _ port.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.MultipartSession) error {
	log.Printf("creating multipart session for intent #%s (upload id %q)...", session.IntentID, session.UploadID)

	const query = `
      INSERT INTO multipart_sessions
        (intent_id, upload_id, part_size, total_parts, created_at)
      VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		session.IntentID, session.UploadID, session.PartSize, session.TotalParts, session.CreatedAt,
	)
	return err
}

func (r *SessionRepository) GetByIntentID(ctx context.Context, intentID db.UUID) (*model.MultipartSession, error) {
	log.Printf("fetching multipart session for intent #%s...", intentID)

	const query = `
      SELECT intent_id, upload_id, part_size, total_parts, created_at
      FROM multipart_sessions
      WHERE intent_id = ?
    `
	row := r.db.QueryRowContext(ctx, query, intentID)
	var session model.MultipartSession
	if err := row.Scan(
		&session.IntentID, &session.UploadID, &session.PartSize, &session.TotalParts, &session.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, intentID db.UUID) error {
	log.Printf("deleting multipart session for intent #%s...", intentID)

	const query = `DELETE FROM multipart_sessions WHERE intent_id = ?`
	_, err := r.db.ExecContext(ctx, query, intentID)
	return err
}
