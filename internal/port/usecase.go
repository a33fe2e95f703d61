package port

import (
	"context"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
)

type UUIDGen func() db.UUID

// upload mode chosen by the size threshold
const (
	UploadModeSimple    = "simple"
	UploadModeMultipart = "multipart"
)

// IntentCreator validates an upload request, reserves an intent and returns
// either a presigned PUT URL or an open multipart session.
type IntentCreator interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (CreateIntentOutput, error)
}
type CreateIntentInput struct {
	OwnerID  db.UUID
	Filename string
	Size     int64
	MimeType string
}
type CreateIntentOutput struct {
	IntentID   db.UUID `json:"intent_id"`
	ObjectKey  string  `json:"object_key"`
	Mode       string  `json:"mode"`
	UploadURL  string  `json:"upload_url,omitempty"`
	UploadID   string  `json:"upload_id,omitempty"`
	PartSize   int64   `json:"part_size,omitempty"`
	TotalParts int     `json:"total_parts,omitempty"`
}

// IntentCompleter confirms the bytes landed in storage and creates the
// media asset. Completing an already-completed intent is a no-op.
type IntentCompleter interface {
	CompleteIntent(ctx context.Context, intentID db.UUID) error
}

// IntentSweeper batch-expires pending intents whose TTL ran out, cleaning up
// any provider multipart session they left behind.
type IntentSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// MultipartInitialiser opens a provider multipart session for an intent.
type MultipartInitialiser interface {
	InitMultipart(ctx context.Context, in InitMultipartInput) (InitMultipartOutput, error)
}
type InitMultipartInput struct {
	IntentID db.UUID
	Size     int64
}
type InitMultipartOutput struct {
	UploadID   string `json:"upload_id"`
	PartSize   int64  `json:"part_size"`
	TotalParts int    `json:"total_parts"`
}

// PartSigner returns a time-boxed URL scoped to exactly one part number.
type PartSigner interface {
	SignPart(ctx context.Context, in SignPartInput) (SignPartOutput, error)
}
type SignPartInput struct {
	IntentID   db.UUID
	UploadID   string
	PartNumber int
}
type SignPartOutput struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MultipartCompleter validates the part set and assembles the object.
type MultipartCompleter interface {
	CompleteMultipart(ctx context.Context, in CompleteMultipartInput) (CompleteMultipartOutput, error)
}
type CompleteMultipartInput struct {
	IntentID db.UUID
	UploadID string
	Parts    []model.CompletedPart
}
type CompleteMultipartOutput struct {
	ObjectKey string `json:"object_key"`
}

// MultipartAborter discards an open session and its uploaded parts.
type MultipartAborter interface {
	AbortMultipart(ctx context.Context, intentID db.UUID) error
}

// WebhookProcessor folds a provider status event into the system of record.
type WebhookProcessor interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

// RecordingMaterializer copies a finished live-session recording out of the
// provider's delivery area into the lessons bucket.
type RecordingMaterializer interface {
	MaterializeRecording(ctx context.Context, in MaterializeRecordingInput) error
}
type MaterializeRecordingInput struct {
	AssetID      db.UUID
	RecordingKey string
}

// InstructorNotifier tells the course instructor about a lifecycle event on
// one of their assets.
type InstructorNotifier interface {
	NotifyInstructor(ctx context.Context, assetID db.UUID, event string) error
}

// AssetGetter retrieves asset details plus a playback URL when ready.
type AssetGetter interface {
	GetAsset(ctx context.Context, id db.UUID) (*GetAssetOutput, error)
}
type GetAssetOutput struct {
	ID              db.UUID   `json:"id"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	FailureReason   *string   `json:"failure_reason,omitempty"`
	RecordingReady  bool      `json:"recording_ready"`
	PlaybackURL     string    `json:"playback_url,omitempty"`
	ValidUntil      time.Time `json:"valid_until"`
}
