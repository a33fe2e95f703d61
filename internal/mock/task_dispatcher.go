package mock

import (
	"context"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

// MockDispatcher implements task dispatching for tests.
type MockDispatcher struct {
	MaterializeCalled bool
	MaterializeIDs    []db.UUID
	MaterializeKeys   []string
	MaterializeErr    error

	NotifyCalled bool
	NotifyIDs    []db.UUID
	NotifyEvents []string
	NotifyErr    error
}

func (m *MockDispatcher) EnqueueMaterializeRecording(ctx context.Context, assetID db.UUID, recordingKey string) error {
	m.MaterializeCalled = true
	m.MaterializeIDs = append(m.MaterializeIDs, assetID)
	m.MaterializeKeys = append(m.MaterializeKeys, recordingKey)
	return m.MaterializeErr
}

func (m *MockDispatcher) EnqueueNotifyInstructor(ctx context.Context, assetID db.UUID, event string) error {
	m.NotifyCalled = true
	m.NotifyIDs = append(m.NotifyIDs, assetID)
	m.NotifyEvents = append(m.NotifyEvents, event)
	return m.NotifyErr
}
