package port

import (
	"context"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

// TaskDispatcher enqueues asynchronous downstream work triggered by
// reconciled webhook events. Enqueues happen strictly after the state
// transition commits.
type TaskDispatcher interface {
	EnqueueMaterializeRecording(ctx context.Context, assetID db.UUID, recordingKey string) error
	EnqueueNotifyInstructor(ctx context.Context, assetID db.UUID, event string) error
}
