package asset

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

// ErrAssetNotFound means no asset matches the given id.
var ErrAssetNotFound = errors.New("asset: not found")

const playbackURLExpiry = 15 * time.Minute

type assetGetterSrv struct {
	repo port.AssetRepository
	strg port.Storage
	cfg  Config
}

// Config names the buckets asset playback reads from.
type Config struct {
	UploadsBucket string
	LessonsBucket string
}

// compile-time check: *assetGetterSrv must satisfy port.AssetGetter
var _ port.AssetGetter = (*assetGetterSrv)(nil)

func NewAssetGetter(repo port.AssetRepository, strg port.Storage, cfg Config) port.AssetGetter {
	return &assetGetterSrv{repo: repo, strg: strg, cfg: cfg}
}

// GetAsset returns the asset's lifecycle state plus a presigned playback
// URL once the asset is ready. Failure reasons are already translated by
// the reconciler; nothing provider-raw leaves this layer.
func (s *assetGetterSrv) GetAsset(ctx context.Context, id db.UUID) (*port.GetAssetOutput, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}

	out := &port.GetAssetOutput{
		ID:              a.ID,
		Kind:            a.Kind,
		Status:          a.Status,
		DurationSeconds: a.DurationSeconds,
		FailureReason:   a.FailureReason,
		RecordingReady:  a.RecordingReady,
		ValidUntil:      time.Now().UTC().Add(playbackURLExpiry),
	}

	bucket, key := s.playbackTarget(a)
	if key != "" {
		url, err := s.strg.GeneratePresignedDownloadURL(ctx, bucket, key, playbackURLExpiry)
		if err != nil {
			return nil, err
		}
		out.PlaybackURL = url
	}
	return out, nil
}

// playbackTarget picks what to play: a ready asset's own object, or the
// materialised recording of an ended live session.
func (s *assetGetterSrv) playbackTarget(a *model.MediaAsset) (bucket, key string) {
	switch {
	case a.Status == model.AssetStatusReady:
		return s.cfg.UploadsBucket, a.ObjectKey
	case a.RecordingReady && a.RecordingKey != nil:
		return s.cfg.LessonsBucket, *a.RecordingKey
	default:
		return "", ""
	}
}
