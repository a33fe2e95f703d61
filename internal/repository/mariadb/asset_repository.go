package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type AssetRepository struct {
	db *sql.DB
}

// compile-time check: *AssetRepository must satisfy port.AssetRepository
var _ port.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, object_key, kind, status, duration_seconds, failure_reason, recording_ready, recording_key, processed_events, created_at, updated_at`

func (r *AssetRepository) Create(ctx context.Context, asset *model.MediaAsset) error {
	log.Printf("creating database record for asset #%s, at status %q...", asset.ID, asset.Status)

	const query = `
      INSERT INTO media_assets
        (id, object_key, kind, status, duration_seconds, failure_reason, recording_ready, recording_key, processed_events)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.ObjectKey, asset.Kind, asset.Status,
		asset.DurationSeconds, asset.FailureReason,
		asset.RecordingReady, asset.RecordingKey, asset.ProcessedEvents,
	)
	return err
}

func (r *AssetRepository) GetByID(ctx context.Context, id db.UUID) (*model.MediaAsset, error) {
	log.Printf("fetching asset #%s from the database...", id)

	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE id = ?`
	return scanAsset(r.db.QueryRowContext(ctx, query, id))
}

func (r *AssetRepository) GetByObjectKey(ctx context.Context, objectKey string) (*model.MediaAsset, error) {
	log.Printf("fetching asset for object %q from the database...", objectKey)

	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE object_key = ?`
	return scanAsset(r.db.QueryRowContext(ctx, query, objectKey))
}

// ApplyEvent applies one webhook event to an asset inside a transaction.
// The row is locked with SELECT ... FOR UPDATE so concurrent events for the
// same asset serialise; the status mutation and the event-log append commit
// together, so a crash can never leave a processed event unrecorded.
func (r *AssetRepository) ApplyEvent(ctx context.Context, id db.UUID, eventKey string, apply func(*model.MediaAsset) error) (applied bool, err error) {
	log.Printf("applying event %q to asset #%s...", eventKey, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("rollback failed for asset #%s: %v", id, rbErr)
			}
		}
	}()

	query := `SELECT ` + assetColumns + ` FROM media_assets WHERE id = ? FOR UPDATE`
	asset, err := scanAsset(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return false, err
	}

	if asset.ProcessedEvents.Contains(eventKey) {
		if err = tx.Commit(); err != nil {
			return false, fmt.Errorf("commit no-op transaction: %w", err)
		}
		return false, nil
	}

	if err = apply(asset); err != nil {
		return false, err
	}
	asset.ProcessedEvents = append(asset.ProcessedEvents, eventKey)

	const update = `
      UPDATE media_assets
      SET
        status           = ?,
        duration_seconds = ?,
        failure_reason   = ?,
        recording_ready  = ?,
        recording_key    = ?,
        processed_events = ?
      WHERE id = ?
    `
	if _, err = tx.ExecContext(ctx, update,
		asset.Status, asset.DurationSeconds, asset.FailureReason,
		asset.RecordingReady, asset.RecordingKey, asset.ProcessedEvents,
		asset.ID,
	); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := row.Scan(
		&asset.ID, &asset.ObjectKey, &asset.Kind, &asset.Status,
		&asset.DurationSeconds, &asset.FailureReason,
		&asset.RecordingReady, &asset.RecordingKey, &asset.ProcessedEvents,
		&asset.CreatedAt, &asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}
