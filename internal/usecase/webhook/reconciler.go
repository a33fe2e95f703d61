package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coursemedia/uploads-ms-go/internal/logger"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

// reconcilerSrv folds provider status events back into the system of
// record. Delivery is at-least-once; the processed-event log makes the
// effect exactly-once.
type reconcilerSrv struct {
	assets     port.AssetRepository
	dispatcher port.TaskDispatcher
	cache      port.Cache
	secret     []byte
}

// compile-time check: *reconcilerSrv must satisfy port.WebhookProcessor
var _ port.WebhookProcessor = (*reconcilerSrv)(nil)

func NewReconciler(assets port.AssetRepository, dispatcher port.TaskDispatcher, cache port.Cache, secret []byte) port.WebhookProcessor {
	return &reconcilerSrv{assets: assets, dispatcher: dispatcher, cache: cache, secret: secret}
}

// HandleEvent verifies, resolves, deduplicates and applies one delivery.
//
// Returned errors split into two classes the handler maps onto HTTP codes:
// ErrInvalidSignature (401, provider must stop) and everything else (500,
// provider retries). Deliberate business rejections (unmappable target,
// already-processed event, unknown event type) return nil so the provider
// acknowledges and stops retrying.
func (s *reconcilerSrv) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	if !VerifySignature(payload, signature, s.secret) {
		return ErrInvalidSignature
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		// authenticated but unparseable: retrying cannot help
		logger.Warnf(ctx, "ignoring malformed webhook payload: %v", err)
		return nil
	}
	if env.Event == "" || env.ExternalID == "" || env.ObjectKey == "" {
		logger.Warnf(ctx, "ignoring webhook with missing fields: event=%q external_id=%q", env.Event, env.ExternalID)
		return nil
	}

	tr, known := transitionFor(env)
	if !known {
		logger.Infof(ctx, "ignoring unknown webhook event type %q", env.Event)
		return nil
	}

	asset, err := s.assets.GetByObjectKey(ctx, env.ObjectKey)
	if errors.Is(err, sql.ErrNoRows) {
		// e.g. the local record was deleted; the provider must not retry
		logger.Warnf(ctx, "webhook target %q not found, acknowledging", env.ObjectKey)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve webhook target %q: %w", env.ObjectKey, err)
	}

	applied, err := s.assets.ApplyEvent(ctx, asset.ID, env.EventKey(), tr.apply)
	if err != nil {
		return fmt.Errorf("apply event %q to asset #%s: %w", env.EventKey(), asset.ID, err)
	}
	if !applied {
		logger.Debugf(ctx, "duplicate delivery of %q for asset #%s, nothing to do", env.EventKey(), asset.ID)
		return nil
	}

	// the transition committed: drop any cached details for the asset
	if err := s.cache.DeleteAssetDetails(ctx, asset.ID); err != nil {
		logger.Warnf(ctx, "failed invalidating cached details for asset #%s: %v", asset.ID, err)
	}
	if err := s.cache.DeleteEtagAssetDetails(ctx, asset.ID); err != nil {
		logger.Warnf(ctx, "failed invalidating cached etag for asset #%s: %v", asset.ID, err)
	}

	// downstream work, gated on the commit and scoped to one enqueue per
	// event key
	if tr.materialize {
		if err := s.dispatcher.EnqueueMaterializeRecording(ctx, asset.ID, env.RecordingKey); err != nil {
			logger.Errorf(ctx, "failed enqueueing recording materialisation for asset #%s: %v", asset.ID, err)
		}
	}
	if tr.notify {
		if err := s.dispatcher.EnqueueNotifyInstructor(ctx, asset.ID, env.Event); err != nil {
			logger.Errorf(ctx, "failed enqueueing instructor notification for asset #%s: %v", asset.ID, err)
		}
	}

	logger.Infof(ctx, "applied %q to asset #%s", env.EventKey(), asset.ID)
	return nil
}
