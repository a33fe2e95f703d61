package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/google/uuid"
)

var testSecret = []byte("whsec_test")

type mockAssets struct {
	asset    *model.MediaAsset
	getErr   error
	applyErr error
}

func (m *mockAssets) Create(ctx context.Context, asset *model.MediaAsset) error { panic("not used") }
func (m *mockAssets) GetByID(ctx context.Context, id db.UUID) (*model.MediaAsset, error) {
	panic("not used")
}
func (m *mockAssets) GetByObjectKey(ctx context.Context, objectKey string) (*model.MediaAsset, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.asset == nil || m.asset.ObjectKey != objectKey {
		return nil, sql.ErrNoRows
	}
	return m.asset, nil
}

// ApplyEvent mirrors the repository contract: skip if the key is in the
// log, otherwise mutate and append atomically.
func (m *mockAssets) ApplyEvent(ctx context.Context, id db.UUID, eventKey string, apply func(*model.MediaAsset) error) (bool, error) {
	if m.applyErr != nil {
		return false, m.applyErr
	}
	if m.asset.ProcessedEvents.Contains(eventKey) {
		return false, nil
	}
	if err := apply(m.asset); err != nil {
		return false, err
	}
	m.asset.ProcessedEvents = append(m.asset.ProcessedEvents, eventKey)
	return true, nil
}

type mockDispatcher struct {
	materialized []string
	notified     []string
}

func (m *mockDispatcher) EnqueueMaterializeRecording(ctx context.Context, assetID db.UUID, recordingKey string) error {
	m.materialized = append(m.materialized, recordingKey)
	return nil
}
func (m *mockDispatcher) EnqueueNotifyInstructor(ctx context.Context, assetID db.UUID, event string) error {
	m.notified = append(m.notified, event)
	return nil
}

type mockCache struct {
	deleted int
}

func (m *mockCache) GetAssetDetails(ctx context.Context, id db.UUID) ([]byte, error) {
	panic("not used")
}
func (m *mockCache) GetEtagAssetDetails(ctx context.Context, id db.UUID) (string, error) {
	panic("not used")
}
func (m *mockCache) SetAssetDetails(ctx context.Context, id db.UUID, data []byte, validUntil time.Time) {
	panic("not used")
}
func (m *mockCache) SetEtagAssetDetails(ctx context.Context, id db.UUID, etag string, validUntil time.Time) {
	panic("not used")
}
func (m *mockCache) DeleteAssetDetails(ctx context.Context, id db.UUID) error {
	m.deleted++
	return nil
}
func (m *mockCache) DeleteEtagAssetDetails(ctx context.Context, id db.UUID) error {
	m.deleted++
	return nil
}

func pendingVideo() *model.MediaAsset {
	return &model.MediaAsset{
		ID:        db.UUID(uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")),
		ObjectKey: "owner/123_v.mp4",
		Kind:      model.AssetKindVideo,
		Status:    model.AssetStatusPending,
	}
}

func signedPayload(t *testing.T, v any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload, Sign(payload, testSecret)
}

func TestHandleEvent_TamperedBody(t *testing.T) {
	assets := &mockAssets{asset: pendingVideo()}
	svc := NewReconciler(assets, &mockDispatcher{}, &mockCache{}, testSecret)

	payload, sig := signedPayload(t, map[string]string{
		"event": "video:ready", "external_id": "v1", "object_key": "owner/123_v.mp4",
	})
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = 'X'

	err := svc.HandleEvent(context.Background(), tampered, sig)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if assets.asset.Status != model.AssetStatusPending {
		t.Error("tampered delivery must cause no mutation")
	}
}

func TestHandleEvent_BadSignatureEncoding(t *testing.T) {
	svc := NewReconciler(&mockAssets{asset: pendingVideo()}, &mockDispatcher{}, &mockCache{}, testSecret)

	err := svc.HandleEvent(context.Background(), []byte(`{}`), "not-hex!!")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestHandleEvent_UnmappableTarget(t *testing.T) {
	assets := &mockAssets{asset: pendingVideo()}
	dispatcher := &mockDispatcher{}
	svc := NewReconciler(assets, dispatcher, &mockCache{}, testSecret)

	payload, sig := signedPayload(t, map[string]string{
		"event": "video:ready", "external_id": "v1", "object_key": "deleted/elsewhere.mp4",
	})
	if err := svc.HandleEvent(context.Background(), payload, sig); err != nil {
		t.Fatalf("unmappable target must be acknowledged, got %v", err)
	}
	if len(dispatcher.notified) != 0 {
		t.Error("no downstream work for an unmappable target")
	}
}

func TestHandleEvent_UnknownEventType(t *testing.T) {
	assets := &mockAssets{asset: pendingVideo()}
	svc := NewReconciler(assets, &mockDispatcher{}, &mockCache{}, testSecret)

	payload, sig := signedPayload(t, map[string]string{
		"event": "video:watermarked", "external_id": "v1", "object_key": "owner/123_v.mp4",
	})
	if err := svc.HandleEvent(context.Background(), payload, sig); err != nil {
		t.Fatalf("unknown event types must be acknowledged, got %v", err)
	}
	if len(assets.asset.ProcessedEvents) != 0 {
		t.Error("unknown events must not be recorded")
	}
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	svc := NewReconciler(&mockAssets{asset: pendingVideo()}, &mockDispatcher{}, &mockCache{}, testSecret)

	payload := []byte(`{"event":`)
	if err := svc.HandleEvent(context.Background(), payload, Sign(payload, testSecret)); err != nil {
		t.Fatalf("authenticated garbage must be acknowledged, got %v", err)
	}
}

func TestHandleEvent_RepoErrorPropagates(t *testing.T) {
	repoErr := errors.New("db down")
	svc := NewReconciler(&mockAssets{asset: pendingVideo(), getErr: repoErr}, &mockDispatcher{}, &mockCache{}, testSecret)

	payload, sig := signedPayload(t, map[string]string{
		"event": "video:ready", "external_id": "v1", "object_key": "owner/123_v.mp4",
	})
	if err := svc.HandleEvent(context.Background(), payload, sig); !errors.Is(err, repoErr) {
		t.Fatalf("infrastructure failures must propagate for retry, got %v", err)
	}
}

func TestHandleEvent_ExactlyOnce(t *testing.T) {
	assets := &mockAssets{asset: pendingVideo()}
	dispatcher := &mockDispatcher{}
	cache := &mockCache{}
	svc := NewReconciler(assets, dispatcher, cache, testSecret)

	duration := 93
	payload, sig := signedPayload(t, map[string]any{
		"event": "video:ready", "external_id": "v1", "object_key": "owner/123_v.mp4",
		"duration_seconds": duration,
	})

	// identical delivery twice
	for i := 0; i < 2; i++ {
		if err := svc.HandleEvent(context.Background(), payload, sig); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i+1, err)
		}
	}

	if assets.asset.Status != model.AssetStatusReady {
		t.Errorf("status = %q, want ready", assets.asset.Status)
	}
	if assets.asset.DurationSeconds == nil || *assets.asset.DurationSeconds != duration {
		t.Error("duration not recorded")
	}
	if len(assets.asset.ProcessedEvents) != 1 {
		t.Errorf("event log grew to %d entries, want exactly 1", len(assets.asset.ProcessedEvents))
	}
	if len(dispatcher.notified) != 1 {
		t.Errorf("notify enqueued %d times, want exactly 1", len(dispatcher.notified))
	}
	if cache.deleted != 2 {
		t.Errorf("cache invalidated %d times, want once per key kind on the first delivery", cache.deleted)
	}
}

func TestHandleEvent_FailureReasonTranslated(t *testing.T) {
	assets := &mockAssets{asset: pendingVideo()}
	svc := NewReconciler(assets, &mockDispatcher{}, &mockCache{}, testSecret)

	payload, sig := signedPayload(t, map[string]string{
		"event": "video:failed", "external_id": "v2", "object_key": "owner/123_v.mp4",
		"error": "input_corrupt",
	})
	if err := svc.HandleEvent(context.Background(), payload, sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assets.asset.Status != model.AssetStatusFailed {
		t.Errorf("status = %q, want failed", assets.asset.Status)
	}
	if assets.asset.FailureReason == nil || *assets.asset.FailureReason == "input_corrupt" {
		t.Error("raw provider code must be translated, never surfaced")
	}
}

func TestHandleEvent_EndedAndRecordingReadyCommute(t *testing.T) {
	run := func(t *testing.T, order []string) *model.MediaAsset {
		asset := pendingVideo()
		asset.Kind = model.AssetKindLiveSession
		asset.Status = model.AssetStatusLive
		assets := &mockAssets{asset: asset}
		dispatcher := &mockDispatcher{}
		svc := NewReconciler(assets, dispatcher, &mockCache{}, testSecret)

		for _, event := range order {
			payload, sig := signedPayload(t, map[string]string{
				"event": event, "external_id": "s1", "object_key": asset.ObjectKey,
				"recording_key": "recordings/s1.mp4",
			})
			if err := svc.HandleEvent(context.Background(), payload, sig); err != nil {
				t.Fatalf("event %q: unexpected error: %v", event, err)
			}
		}
		if len(dispatcher.materialized) != 1 {
			t.Errorf("materialize enqueued %d times, want 1", len(dispatcher.materialized))
		}
		return asset
	}

	a := run(t, []string{"live:ended", "recording:ready"})
	b := run(t, []string{"recording:ready", "live:ended"})

	for name, asset := range map[string]*model.MediaAsset{"ended-first": a, "recording-first": b} {
		if asset.Status != model.AssetStatusEnded {
			t.Errorf("%s: status = %q, want ended", name, asset.Status)
		}
		if !asset.RecordingReady {
			t.Errorf("%s: recording not marked ready", name)
		}
		if len(asset.ProcessedEvents) != 2 {
			t.Errorf("%s: event log has %d entries, want 2", name, len(asset.ProcessedEvents))
		}
	}
}
