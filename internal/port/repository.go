package port

import (
	"context"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
)

// IntentRepository defines persistence operations for upload intents.
type IntentRepository interface {
	Create(ctx context.Context, intent *model.UploadIntent) error
	GetByID(ctx context.Context, id db.UUID) (*model.UploadIntent, error)
	Update(ctx context.Context, intent *model.UploadIntent) error
	// ListExpiredPending returns up to limit pending intents whose TTL ran
	// out before now. Expiry is otherwise lazy, so this only feeds the
	// batch sweeper.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.UploadIntent, error)
}

// SessionRepository defines persistence operations for multipart sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.MultipartSession) error
	GetByIntentID(ctx context.Context, intentID db.UUID) (*model.MultipartSession, error)
	Delete(ctx context.Context, intentID db.UUID) error
}

// AssetRepository defines persistence operations for media assets.
type AssetRepository interface {
	Create(ctx context.Context, asset *model.MediaAsset) error
	GetByID(ctx context.Context, id db.UUID) (*model.MediaAsset, error)
	GetByObjectKey(ctx context.Context, objectKey string) (*model.MediaAsset, error)
	// ApplyEvent runs apply against the asset inside one transaction,
	// appending eventKey to the processed-event log. It reports false with
	// no error when eventKey was already applied, so redelivered webhooks
	// mutate nothing. The row is locked for the duration of the
	// transaction: concurrent events for the same asset serialise instead
	// of losing updates.
	ApplyEvent(ctx context.Context, id db.UUID, eventKey string, apply func(*model.MediaAsset) error) (bool, error)
}
