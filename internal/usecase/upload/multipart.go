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

// MultipartManager coordinates provider-side multipart sessions: it opens them,
// signs per-part URLs and validates completion calls.
type MultipartManager struct {
	intents  port.IntentRepository
	sessions port.SessionRepository
	strg     port.Storage
	cfg      Config
}

// compile-time checks
var (
	_ port.MultipartInitialiser = (*MultipartManager)(nil)
	_ port.PartSigner           = (*MultipartManager)(nil)
	_ port.MultipartCompleter   = (*MultipartManager)(nil)
	_ port.MultipartAborter     = (*MultipartManager)(nil)
)

func NewMultipartManager(intents port.IntentRepository, sessions port.SessionRepository, strg port.Storage, cfg Config) *MultipartManager {
	return &MultipartManager{intents: intents, sessions: sessions, strg: strg, cfg: cfg}
}

// InitMultipart opens a provider session for the intent. Re-initialising an
// intent that already has an open session returns that session unchanged, so
// a client retry after network loss does not strand uploaded parts.
func (s *MultipartManager) InitMultipart(ctx context.Context, in port.InitMultipartInput) (port.InitMultipartOutput, error) {
	intent, err := s.liveIntent(ctx, in.IntentID)
	if err != nil {
		return port.InitMultipartOutput{}, err
	}

	session, err := s.sessions.GetByIntentID(ctx, in.IntentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return port.InitMultipartOutput{}, err
	}
	if session == nil || errors.Is(err, sql.ErrNoRows) {
		session, err = openSession(ctx, s.sessions, s.strg, intent, s.cfg)
		if err != nil {
			return port.InitMultipartOutput{}, err
		}
	}

	return port.InitMultipartOutput{
		UploadID:   session.UploadID,
		PartSize:   session.PartSize,
		TotalParts: session.TotalParts,
	}, nil
}

// SignPart returns a short-lived URL scoped to exactly one part number. An
// expired URL must be re-requested here, never retried as-is.
func (s *MultipartManager) SignPart(ctx context.Context, in port.SignPartInput) (port.SignPartOutput, error) {
	intent, session, err := s.liveSession(ctx, in.IntentID, in.UploadID)
	if err != nil {
		return port.SignPartOutput{}, err
	}
	if in.PartNumber < 1 || in.PartNumber > session.TotalParts {
		return port.SignPartOutput{}, fmt.Errorf("%w: part %d of %d", ErrInvalidPart, in.PartNumber, session.TotalParts)
	}

	url, err := s.strg.PresignPartURL(ctx, s.cfg.Bucket, intent.ObjectKey, session.UploadID, in.PartNumber, s.cfg.PartURLExpiry)
	if err != nil {
		return port.SignPartOutput{}, err
	}
	return port.SignPartOutput{URL: url, ExpiresAt: time.Now().UTC().Add(s.cfg.PartURLExpiry)}, nil
}

// CompleteMultipart validates the submitted part set and asks the provider
// to assemble the object. A gap keeps the session open for retry: aborting
// here would discard already-uploaded bytes and force a full restart.
func (s *MultipartManager) CompleteMultipart(ctx context.Context, in port.CompleteMultipartInput) (port.CompleteMultipartOutput, error) {
	intent, session, err := s.liveSession(ctx, in.IntentID, in.UploadID)
	if err != nil {
		return port.CompleteMultipartOutput{}, err
	}

	if err := validatePartSet(in.Parts, session.TotalParts); err != nil {
		return port.CompleteMultipartOutput{}, err
	}

	if err := s.strg.CompleteMultipartUpload(ctx, s.cfg.Bucket, intent.ObjectKey, session.UploadID, in.Parts); err != nil {
		return port.CompleteMultipartOutput{}, fmt.Errorf("assemble object %q: %w", intent.ObjectKey, err)
	}

	if err := s.sessions.Delete(ctx, in.IntentID); err != nil {
		logger.Warnf(ctx, "failed deleting multipart session for intent #%s: %v", in.IntentID, err)
	}
	return port.CompleteMultipartOutput{ObjectKey: intent.ObjectKey}, nil
}

// AbortMultipart discards the provider session and every uploaded part.
func (s *MultipartManager) AbortMultipart(ctx context.Context, intentID db.UUID) error {
	intent, err := getIntent(ctx, s.intents, intentID)
	if err != nil {
		return err
	}
	session, err := s.sessions.GetByIntentID(ctx, intentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	if err := s.strg.AbortMultipartUpload(ctx, s.cfg.Bucket, intent.ObjectKey, session.UploadID); err != nil {
		return fmt.Errorf("abort multipart session for intent #%s: %w", intentID, err)
	}
	return s.sessions.Delete(ctx, intentID)
}

// liveIntent loads an intent and enforces lazy expiry.
func (s *MultipartManager) liveIntent(ctx context.Context, id db.UUID) (*model.UploadIntent, error) {
	intent, err := getIntent(ctx, s.intents, id)
	if err != nil {
		return nil, err
	}
	if intent.Expired(time.Now().UTC()) {
		return nil, ErrIntentExpired
	}
	return intent, nil
}

func (s *MultipartManager) liveSession(ctx context.Context, intentID db.UUID, uploadID string) (*model.UploadIntent, *model.MultipartSession, error) {
	intent, err := s.liveIntent(ctx, intentID)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.GetByIntentID(ctx, intentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if session.UploadID != uploadID {
		return nil, nil, fmt.Errorf("%w: unknown upload id %q", ErrInvalidPart, uploadID)
	}
	return intent, session, nil
}

// validatePartSet demands a contiguous 1..totalParts set with unique etags.
func validatePartSet(parts []model.CompletedPart, totalParts int) error {
	if len(parts) != totalParts {
		return fmt.Errorf("%w: got %d parts, want %d", ErrIncompletePartSet, len(parts), totalParts)
	}
	seen := make(map[int]bool, len(parts))
	etags := make(map[string]bool, len(parts))
	for _, p := range parts {
		if p.PartNumber < 1 || p.PartNumber > totalParts {
			return fmt.Errorf("%w: part number %d out of range", ErrIncompletePartSet, p.PartNumber)
		}
		if seen[p.PartNumber] {
			return fmt.Errorf("%w: duplicate part number %d", ErrIncompletePartSet, p.PartNumber)
		}
		if p.ETag == "" || etags[p.ETag] {
			return fmt.Errorf("%w: missing or duplicate etag for part %d", ErrIncompletePartSet, p.PartNumber)
		}
		seen[p.PartNumber] = true
		etags[p.ETag] = true
	}
	return nil
}
