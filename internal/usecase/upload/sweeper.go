package upload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

// sweepBatchSize bounds one sweep run; rerun the sweeper until it reports
// zero to drain a large backlog.
const sweepBatchSize = 500

type intentSweeperSrv struct {
	intents  port.IntentRepository
	sessions port.SessionRepository
	strg     port.Storage
	cfg      Config
}

// compile-time check: *intentSweeperSrv must satisfy port.IntentSweeper
var _ port.IntentSweeper = (*intentSweeperSrv)(nil)

func NewIntentSweeper(intents port.IntentRepository, sessions port.SessionRepository, strg port.Storage, cfg Config) port.IntentSweeper {
	return &intentSweeperSrv{intents: intents, sessions: sessions, strg: strg, cfg: cfg}
}

// SweepExpired marks stale pending intents expired and aborts any provider
// multipart session they opened, so orphaned parts stop accruing storage.
// Intent expiry is normally lazy (checked on read); this catches intents
// nobody ever came back for.
func (s *intentSweeperSrv) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.intents.ListExpiredPending(ctx, time.Now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired intents: %w", err)
	}

	swept := 0
	for _, intent := range expired {
		if err := s.sweep(ctx, intent); err != nil {
			log.Printf("could not expire intent #%s: %v", intent.ID, err)
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *intentSweeperSrv) sweep(ctx context.Context, intent *model.UploadIntent) error {
	session, err := s.sessions.GetByIntentID(ctx, intent.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if session != nil {
		// a session the provider already dropped counts as cleaned up
		if err := s.strg.AbortMultipartUpload(ctx, s.cfg.Bucket, intent.ObjectKey, session.UploadID); err != nil && !errors.Is(err, port.ErrUploadNotFound) {
			return err
		}
		if err := s.sessions.Delete(ctx, intent.ID); err != nil {
			return err
		}
	}

	intent.Status = model.IntentStatusExpired
	return s.intents.Update(ctx, intent)
}
