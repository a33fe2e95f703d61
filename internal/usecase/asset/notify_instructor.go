package asset

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/coursemedia/uploads-ms-go/internal/db"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type instructorNotifierSrv struct {
	repo port.AssetRepository
}

// compile-time check: *instructorNotifierSrv must satisfy port.InstructorNotifier
var _ port.InstructorNotifier = (*instructorNotifierSrv)(nil)

func NewInstructorNotifier(repo port.AssetRepository) port.InstructorNotifier {
	return &instructorNotifierSrv{repo: repo}
}

// NotifyInstructor surfaces a lifecycle event to the owning instructor.
// Delivery is a log line for now; the course platform consumes these from
// the log pipeline.
func (s *instructorNotifierSrv) NotifyInstructor(ctx context.Context, assetID db.UUID, event string) error {
	a, err := s.repo.GetByID(ctx, assetID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAssetNotFound
	}
	if err != nil {
		return err
	}

	log.Printf("notifying instructor: asset #%s (%s) is now %q after event %q", a.ID, a.Kind, a.Status, event)
	return nil
}
