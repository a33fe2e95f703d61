package upload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/logger"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type intentCompleterSrv struct {
	intents port.IntentRepository
	assets  port.AssetRepository
	strg    port.Storage
	genUUID port.UUIDGen
	cfg     Config
}

// compile-time check: *intentCompleterSrv must satisfy port.IntentCompleter
var _ port.IntentCompleter = (*intentCompleterSrv)(nil)

func NewIntentCompleter(intents port.IntentRepository, assets port.AssetRepository, strg port.Storage, genUUID port.UUIDGen, cfg Config) port.IntentCompleter {
	return &intentCompleterSrv{intents: intents, assets: assets, strg: strg, genUUID: genUUID, cfg: cfg}
}

// CompleteIntent is the commit half of the two-phase upload. It is
// idempotent: clients retry it after network loss, so an already-completed
// intent is acknowledged, not rejected.
func (s *intentCompleterSrv) CompleteIntent(ctx context.Context, intentID db.UUID) error {
	intent, err := getIntent(ctx, s.intents, intentID)
	if err != nil {
		return err
	}
	if intent.Status == model.IntentStatusCompleted {
		logger.Debugf(ctx, "intent #%s already completed, nothing to do", intentID)
		return nil
	}
	if intent.Expired(time.Now().UTC()) {
		return s.markExpired(ctx, intent)
	}

	info, err := s.strg.StatFile(ctx, s.cfg.Bucket, intent.ObjectKey)
	if errors.Is(err, port.ErrObjectNotFound) {
		return fmt.Errorf("%w: no object at %q, nothing was uploaded", ErrInvalidFile, intent.ObjectKey)
	}
	if err != nil {
		return fmt.Errorf("stats for object %q failed: %w", intent.ObjectKey, err)
	}
	if err := s.checkSize(intent, info.SizeBytes); err != nil {
		return err
	}

	asset := &model.MediaAsset{
		ID:        s.genUUID(),
		ObjectKey: intent.ObjectKey,
		Kind:      KindForMimeType(intent.DeclaredMimeType),
		Status:    model.AssetStatusPending,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return err
	}

	intent.Status = model.IntentStatusCompleted
	if err := s.intents.Update(ctx, intent); err != nil {
		return fmt.Errorf("failed marking intent #%s completed: %w", intentID, err)
	}
	return nil
}

// checkSize verifies the stored object against the declared size. A
// multipart upload may land short of the declaration by at most one part
// (the tail part is allowed to be smaller).
func (s *intentCompleterSrv) checkSize(intent *model.UploadIntent, actual int64) error {
	slack := int64(0)
	if intent.DeclaredSize > s.cfg.MultipartThreshold {
		slack, _ = PlanParts(intent.DeclaredSize, s.cfg.MinPartSize, s.cfg.MaxParts)
	}
	if actual > intent.DeclaredSize || actual < intent.DeclaredSize-slack {
		return fmt.Errorf("%w: object %q is %d bytes, declared %d", ErrInvalidFile, intent.ObjectKey, actual, intent.DeclaredSize)
	}
	return nil
}

func (s *intentCompleterSrv) markExpired(ctx context.Context, intent *model.UploadIntent) error {
	if intent.Status != model.IntentStatusExpired {
		intent.Status = model.IntentStatusExpired
		if err := s.intents.Update(ctx, intent); err != nil {
			logger.Warnf(ctx, "failed persisting expiry of intent #%s: %v", intent.ID, err)
		}
	}
	return ErrIntentExpired
}

// getIntent loads an intent, mapping a missing row onto ErrIntentNotFound.
func getIntent(ctx context.Context, intents port.IntentRepository, id db.UUID) (*model.UploadIntent, error) {
	intent, err := intents.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}
