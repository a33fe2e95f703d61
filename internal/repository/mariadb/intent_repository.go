package mariadb

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type IntentRepository struct {
	db *sql.DB
}

// compile-time check: *IntentRepository must satisfy port.IntentRepository
var _ port.IntentRepository = (*IntentRepository)(nil)

func NewIntentRepository(db *sql.DB) *IntentRepository {
	return &IntentRepository{db: db}
}

func (r *IntentRepository) Create(ctx context.Context, intent *model.UploadIntent) error {
	log.Printf("creating database record for intent #%s, at status %q...", intent.ID, intent.Status)

	const query = `
      INSERT INTO upload_intents
        (id, owner_id, object_key, filename, declared_size, declared_mime_type, status, created_at, expires_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		intent.ID, intent.OwnerID, intent.ObjectKey,
		intent.Filename, intent.DeclaredSize, intent.DeclaredMimeType,
		intent.Status, intent.CreatedAt, intent.ExpiresAt,
	)
	return err
}

func (r *IntentRepository) GetByID(ctx context.Context, id db.UUID) (*model.UploadIntent, error) {
	log.Printf("fetching intent #%s from the database...", id)

	const query = `
      SELECT id, owner_id, object_key, filename, declared_size, declared_mime_type, status, created_at, expires_at
      FROM upload_intents
      WHERE id = ?
    `
	row := r.db.QueryRowContext(ctx, query, id)
	var intent model.UploadIntent
	if err := row.Scan(
		&intent.ID, &intent.OwnerID, &intent.ObjectKey,
		&intent.Filename, &intent.DeclaredSize, &intent.DeclaredMimeType,
		&intent.Status, &intent.CreatedAt, &intent.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *IntentRepository) Update(ctx context.Context, intent *model.UploadIntent) error {
	log.Printf("updating database record for intent #%s, with status %q...", intent.ID, intent.Status)

	const query = `
      UPDATE upload_intents
      SET status = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query, intent.Status, intent.ID)
	return err
}

func (r *IntentRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.UploadIntent, error) {
	log.Printf("listing pending intents expired before %s...", now.Format(time.RFC3339))

	const query = `
      SELECT id, owner_id, object_key, filename, declared_size, declared_mime_type, status, created_at, expires_at
      FROM upload_intents
      WHERE status = ? AND expires_at < ?
      ORDER BY expires_at
      LIMIT ?
    `
	rows, err := r.db.QueryContext(ctx, query, model.IntentStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []*model.UploadIntent
	for rows.Next() {
		var intent model.UploadIntent
		if err := rows.Scan(
			&intent.ID, &intent.OwnerID, &intent.ObjectKey,
			&intent.Filename, &intent.DeclaredSize, &intent.DeclaredMimeType,
			&intent.Status, &intent.CreatedAt, &intent.ExpiresAt,
		); err != nil {
			return nil, err
		}
		intents = append(intents, &intent)
	}
	return intents, rows.Err()
}
