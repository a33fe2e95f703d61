package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

const (
	AssetKindVideo       = "video"
	AssetKindImage       = "image"
	AssetKindLiveSession = "live_session"
)

const (
	AssetStatusPending    = "pending"
	AssetStatusProcessing = "processing"
	AssetStatusReady      = "ready"
	AssetStatusFailed     = "failed"

	// live session lifecycle
	AssetStatusScheduled = "scheduled"
	AssetStatusLive      = "live"
	AssetStatusEnded     = "ended"
)

// MediaAsset is the system of record for one uploaded media object. Its
// status is mutated exclusively by the webhook reconciler; ProcessedEvents
// is the idempotency log guarding against at-least-once webhook delivery.
type MediaAsset struct {
	ID              db.UUID   `json:"id"`
	ObjectKey       string    `json:"object_key"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	FailureReason   *string   `json:"failure_reason,omitempty"`
	RecordingReady  bool      `json:"recording_ready"`
	RecordingKey    *string   `json:"recording_key,omitempty"`
	ProcessedEvents EventLog  `json:"processed_events"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Terminal reports whether no further processing transitions are expected.
func (a *MediaAsset) Terminal() bool {
	return a.Status == AssetStatusReady || a.Status == AssetStatusFailed
}

// EventLog is the set of webhook event keys already applied to an asset,
// stored as a JSON array.
type EventLog []string

// Contains reports whether the given event key was already applied.
func (l EventLog) Contains(key string) bool {
	for _, k := range l {
		if k == key {
			return true
		}
	}
	return false
}

func (l EventLog) Value() (driver.Value, error) {
	if l == nil {
		l = EventLog{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal EventLog: %w", err)
	}
	return b, nil
}

func (l *EventLog) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("EventLog.Scan: expected []byte, got %T", src)
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal EventLog: %w", err)
	}
	return nil
}
