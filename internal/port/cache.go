package port

import (
	"context"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

// Cache provides caching capabilities for asset detail lookups.
type Cache interface {
	GetAssetDetails(ctx context.Context, id db.UUID) ([]byte, error)
	GetEtagAssetDetails(ctx context.Context, id db.UUID) (string, error)
	SetAssetDetails(ctx context.Context, id db.UUID, data []byte, validUntil time.Time)
	SetEtagAssetDetails(ctx context.Context, id db.UUID, etag string, validUntil time.Time)
	DeleteAssetDetails(ctx context.Context, id db.UUID) error
	DeleteEtagAssetDetails(ctx context.Context, id db.UUID) error
}
