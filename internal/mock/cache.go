package mock

import (
	"context"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

// Cache implements cache behaviour for tests.
type Cache struct {
	// stored values
	AssetOut []byte

	// etag values
	EtagAsset string

	// errors
	GetAssetErr     error
	GetEtagAssetErr error
	DelAssetErr     error
	DelEtagAssetErr error

	// call flags
	GetAssetCalled     bool
	GetEtagAssetCalled bool
	SetAssetCalled     bool
	SetEtagAssetCalled bool
	DelAssetCalled     bool
	DelEtagAssetCalled bool
}

func (c *Cache) GetAssetDetails(ctx context.Context, id db.UUID) ([]byte, error) {
	c.GetAssetCalled = true
	if c.GetAssetErr != nil {
		return nil, c.GetAssetErr
	}
	return c.AssetOut, nil
}

func (c *Cache) GetEtagAssetDetails(ctx context.Context, id db.UUID) (string, error) {
	c.GetEtagAssetCalled = true
	if c.GetEtagAssetErr != nil {
		return "", c.GetEtagAssetErr
	}
	return c.EtagAsset, nil
}

func (c *Cache) SetAssetDetails(ctx context.Context, id db.UUID, data []byte, validUntil time.Time) {
	c.SetAssetCalled = true
	c.AssetOut = data
}

func (c *Cache) SetEtagAssetDetails(ctx context.Context, id db.UUID, etag string, validUntil time.Time) {
	c.SetEtagAssetCalled = true
	c.EtagAsset = etag
}

func (c *Cache) DeleteAssetDetails(ctx context.Context, id db.UUID) error {
	c.DelAssetCalled = true
	return c.DelAssetErr
}

func (c *Cache) DeleteEtagAssetDetails(ctx context.Context, id db.UUID) error {
	c.DelEtagAssetCalled = true
	return c.DelEtagAssetErr
}
