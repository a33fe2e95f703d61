package asset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"

	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
)

type recordingMaterializerSrv struct {
	repo port.AssetRepository
	strg port.Storage
	cfg  Config
}

// compile-time check: *recordingMaterializerSrv must satisfy port.RecordingMaterializer
var _ port.RecordingMaterializer = (*recordingMaterializerSrv)(nil)

func NewRecordingMaterializer(repo port.AssetRepository, strg port.Storage, cfg Config) port.RecordingMaterializer {
	return &recordingMaterializerSrv{repo: repo, strg: strg, cfg: cfg}
}

// MaterializeRecording copies the provider-delivered recording into the
// lessons bucket and points the asset at the canonical copy. The rewrite
// goes through ApplyEvent with a key derived from the recording, so a
// retried task copies at most once.
func (s *recordingMaterializerSrv) MaterializeRecording(ctx context.Context, in port.MaterializeRecordingInput) error {
	a, err := s.repo.GetByID(ctx, in.AssetID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAssetNotFound
	}
	if err != nil {
		return err
	}
	if !a.RecordingReady {
		return fmt.Errorf("asset #%s has no recording to materialize", in.AssetID)
	}

	destKey := "recordings/" + in.AssetID.String() + path.Ext(in.RecordingKey)
	if err := s.strg.CopyFile(ctx, s.cfg.UploadsBucket, in.RecordingKey, s.cfg.LessonsBucket, destKey); err != nil {
		return fmt.Errorf("copying recording %q failed: %w", in.RecordingKey, err)
	}

	_, err = s.repo.ApplyEvent(ctx, in.AssetID, "materialized:"+in.RecordingKey, func(a *model.MediaAsset) error {
		a.RecordingKey = &destKey
		return nil
	})
	return err
}
