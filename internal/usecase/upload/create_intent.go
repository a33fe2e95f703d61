package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type intentCreatorSrv struct {
	intents  port.IntentRepository
	sessions port.SessionRepository
	strg     port.Storage
	limiter  port.RateLimiter
	genUUID  port.UUIDGen
	cfg      Config
}

// compile-time check: *intentCreatorSrv must satisfy port.IntentCreator
var _ port.IntentCreator = (*intentCreatorSrv)(nil)

func NewIntentCreator(intents port.IntentRepository, sessions port.SessionRepository, strg port.Storage, limiter port.RateLimiter, genUUID port.UUIDGen, cfg Config) port.IntentCreator {
	return &intentCreatorSrv{intents: intents, sessions: sessions, strg: strg, limiter: limiter, genUUID: genUUID, cfg: cfg}
}

func (s *intentCreatorSrv) CreateIntent(ctx context.Context, in port.CreateIntentInput) (port.CreateIntentOutput, error) {
	if err := ValidateFile(in.Size, in.MimeType); err != nil {
		return port.CreateIntentOutput{}, err
	}

	ok, err := s.limiter.Allow(ctx, in.OwnerID.String())
	if err != nil {
		return port.CreateIntentOutput{}, fmt.Errorf("rate limit check: %w", err)
	}
	if !ok {
		return port.CreateIntentOutput{}, ErrRateLimited
	}

	now := time.Now().UTC()
	intent := &model.UploadIntent{
		ID:               s.genUUID(),
		OwnerID:          in.OwnerID,
		ObjectKey:        fmt.Sprintf("%s/%d_%s", in.OwnerID, now.UnixNano(), in.Filename),
		Filename:         in.Filename,
		DeclaredSize:     in.Size,
		DeclaredMimeType: in.MimeType,
		Status:           model.IntentStatusPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.cfg.IntentTTL),
	}
	if err := s.intents.Create(ctx, intent); err != nil {
		return port.CreateIntentOutput{}, err
	}

	out := port.CreateIntentOutput{
		IntentID:  intent.ID,
		ObjectKey: intent.ObjectKey,
	}

	if in.Size <= s.cfg.MultipartThreshold {
		url, err := s.strg.GeneratePresignedUploadURL(ctx, s.cfg.Bucket, intent.ObjectKey, s.cfg.UploadURLExpiry)
		if err != nil {
			return port.CreateIntentOutput{}, err
		}
		out.Mode = port.UploadModeSimple
		out.UploadURL = url
		return out, nil
	}

	session, err := openSession(ctx, s.sessions, s.strg, intent, s.cfg)
	if err != nil {
		return port.CreateIntentOutput{}, err
	}
	out.Mode = port.UploadModeMultipart
	out.UploadID = session.UploadID
	out.PartSize = session.PartSize
	out.TotalParts = session.TotalParts
	return out, nil
}

// openSession opens a provider multipart session for the intent and
// persists it. Shared by intent creation and the explicit init endpoint.
func openSession(ctx context.Context, sessions port.SessionRepository, strg port.Storage, intent *model.UploadIntent, cfg Config) (*model.MultipartSession, error) {
	uploadID, err := strg.NewMultipartUpload(ctx, cfg.Bucket, intent.ObjectKey, intent.DeclaredMimeType)
	if err != nil {
		return nil, fmt.Errorf("open multipart session for intent #%s: %w", intent.ID, err)
	}

	partSize, totalParts := PlanParts(intent.DeclaredSize, cfg.MinPartSize, cfg.MaxParts)
	session := &model.MultipartSession{
		IntentID:   intent.ID,
		UploadID:   uploadID,
		PartSize:   partSize,
		TotalParts: totalParts,
		CreatedAt:  time.Now().UTC(),
	}
	if err := sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
