package worker

import (
	"context"
	"log"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/task"
	"github.com/google/uuid"
)

// NotifyInstructorHandler handles a notify-instructor task.
func NotifyInstructorHandler(ctx context.Context, p task.NotifyInstructorPayload, svc port.InstructorNotifier) error {
	id, err := uuid.Parse(p.AssetID)
	if err != nil {
		log.Printf("❌  Invalid asset ID %q: %v", p.AssetID, err)
		return err
	}

	if err := svc.NotifyInstructor(ctx, db.UUID(id), p.Event); err != nil {
		log.Printf("❌  Failed to notify instructor about asset #%s: %v", id, err)
		return err
	}

	log.Printf("✅  Successfully notified instructor about asset #%s", id)
	return nil
}
