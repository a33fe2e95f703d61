package worker

import (
	"context"
	"log"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/task"
	"github.com/google/uuid"
)

// MaterializeRecordingHandler handles a materialize-recording task.
// It converts the incoming task payload to the input expected by
// the port.RecordingMaterializer service and delegates the call.
func MaterializeRecordingHandler(ctx context.Context, p task.MaterializeRecordingPayload, svc port.RecordingMaterializer) error {
	id, err := uuid.Parse(p.AssetID)
	if err != nil {
		log.Printf("❌  Invalid asset ID %q: %v", p.AssetID, err)
		return err
	}

	in := port.MaterializeRecordingInput{AssetID: db.UUID(id), RecordingKey: p.RecordingKey}
	if err := svc.MaterializeRecording(ctx, in); err != nil {
		log.Printf("❌  Failed to materialize recording for asset #%s: %v", id, err)
		return err
	}

	log.Printf("✅  Successfully materialized recording for asset #%s", id)
	return nil
}
