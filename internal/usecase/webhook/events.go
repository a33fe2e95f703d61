package webhook

import (
	"github.com/coursemedia/uploads-ms-go/internal/model"
)

// provider event types; anything else is acknowledged and ignored so the
// provider can add types without breaking us
const (
	EventVideoProcessing = "video:processing"
	EventVideoReady      = "video:ready"
	EventVideoFailed     = "video:failed"
	EventLiveStarted     = "live:started"
	EventLiveEnded       = "live:ended"
	EventRecordingReady  = "recording:ready"
)

// envelope is the provider's webhook payload. ObjectKey correlates the
// event to a local asset; ExternalID is the provider-side job id and,
// together with the event type, forms the idempotency key.
type envelope struct {
	Event           string `json:"event"`
	ExternalID      string `json:"external_id"`
	ObjectKey       string `json:"object_key"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
	Error           string `json:"error,omitempty"`
	RecordingKey    string `json:"recording_key,omitempty"`
}

// EventKey builds the idempotency key for one delivery.
func (e envelope) EventKey() string {
	return e.Event + ":" + e.ExternalID
}

// transition describes the effect of one known event: how the asset row
// mutates and which downstream work to enqueue once the mutation commits.
type transition struct {
	apply       func(*model.MediaAsset) error
	materialize bool
	notify      bool
}

// transitionFor maps an envelope onto its transition. The second return is
// false for unknown event types, the explicit "ignore" arm.
// live:ended and recording:ready are independent, commutative transitions:
// the provider does not guarantee their order.
func transitionFor(env envelope) (transition, bool) {
	switch env.Event {
	case EventVideoProcessing:
		return transition{apply: func(a *model.MediaAsset) error {
			if a.Status == model.AssetStatusPending {
				a.Status = model.AssetStatusProcessing
			}
			return nil
		}}, true

	case EventVideoReady:
		return transition{
			apply: func(a *model.MediaAsset) error {
				a.Status = model.AssetStatusReady
				a.DurationSeconds = env.DurationSeconds
				a.FailureReason = nil
				return nil
			},
			notify: true,
		}, true

	case EventVideoFailed:
		return transition{
			apply: func(a *model.MediaAsset) error {
				a.Status = model.AssetStatusFailed
				reason := translateFailure(env.Error)
				a.FailureReason = &reason
				return nil
			},
			notify: true,
		}, true

	case EventLiveStarted:
		return transition{apply: func(a *model.MediaAsset) error {
			a.Status = model.AssetStatusLive
			return nil
		}}, true

	case EventLiveEnded:
		return transition{
			apply: func(a *model.MediaAsset) error {
				a.Status = model.AssetStatusEnded
				a.DurationSeconds = env.DurationSeconds
				return nil
			},
			notify: true,
		}, true

	case EventRecordingReady:
		return transition{
			apply: func(a *model.MediaAsset) error {
				a.RecordingReady = true
				if env.RecordingKey != "" {
					key := env.RecordingKey
					a.RecordingKey = &key
				}
				return nil
			},
			materialize: true,
			notify:      true,
		}, true

	default:
		return transition{}, false
	}
}

// translateFailure maps raw provider error codes onto user-facing messages.
// Provider codes are never surfaced as-is.
func translateFailure(code string) string {
	switch code {
	case "input_corrupt", "input_truncated":
		return "The uploaded file is damaged and could not be processed."
	case "codec_unsupported":
		return "This video format is not supported."
	case "duration_exceeded":
		return "The video is longer than the allowed maximum."
	default:
		return "Processing failed. Please try uploading again."
	}
}
