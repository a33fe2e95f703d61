package task

import (
	"context"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type NoopDispatcher struct{}

var _ port.TaskDispatcher = (*NoopDispatcher)(nil)

func NewNoopDispatcher() *NoopDispatcher { return &NoopDispatcher{} }

func (d *NoopDispatcher) EnqueueMaterializeRecording(ctx context.Context, assetID db.UUID, recordingKey string) error {
	return nil
}

func (d *NoopDispatcher) EnqueueNotifyInstructor(ctx context.Context, assetID db.UUID, event string) error {
	return nil
}
