package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeMaterializeRecording = "lesson:materialize_recording"
	TypeNotifyInstructor     = "notify:instructor"
)

type MaterializeRecordingPayload struct {
	AssetID      string `json:"asset_id"`
	RecordingKey string `json:"recording_key"`
}

// NewMaterializeRecordingTask creates an Asynq task for copying a live
// recording into the lessons bucket.
func NewMaterializeRecordingTask(assetID, recordingKey string) (*asynq.Task, error) {
	p := MaterializeRecordingPayload{AssetID: assetID, RecordingKey: recordingKey}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal materialize-recording payload: %w", err)
	}
	return asynq.NewTask(TypeMaterializeRecording, data), nil
}

// ParseMaterializeRecordingPayload parses the task payload to MaterializeRecordingPayload.
func ParseMaterializeRecordingPayload(t *asynq.Task) (MaterializeRecordingPayload, error) {
	var p MaterializeRecordingPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return MaterializeRecordingPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}

type NotifyInstructorPayload struct {
	AssetID string `json:"asset_id"`
	Event   string `json:"event"`
}

// NewNotifyInstructorTask creates an Asynq task for notifying the instructor
// about an asset lifecycle event.
func NewNotifyInstructorTask(assetID, event string) (*asynq.Task, error) {
	p := NotifyInstructorPayload{AssetID: assetID, Event: event}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal notify-instructor payload: %w", err)
	}
	return asynq.NewTask(TypeNotifyInstructor, data), nil
}

// ParseNotifyInstructorPayload parses the task payload to NotifyInstructorPayload.
func ParseNotifyInstructorPayload(t *asynq.Task) (NotifyInstructorPayload, error) {
	var p NotifyInstructorPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return NotifyInstructorPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}
