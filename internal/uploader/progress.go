package uploader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coursemedia/uploads-ms-go/internal/model"
)

// Progress is the durable record of a partially uploaded file. It is written
// back to disk after every confirmed part so a crashed or cancelled run can
// resume without re-uploading anything the server already acknowledged.
type Progress struct {
	IntentID   string                `json:"intent_id"`
	UploadID   string                `json:"upload_id"`
	PartSize   int64                 `json:"part_size"`
	TotalParts int                   `json:"total_parts"`
	TotalBytes int64                 `json:"total_bytes"`
	Completed  []model.CompletedPart `json:"completed"`
}

// Has reports whether partNumber is already confirmed.
func (p *Progress) Has(partNumber int) bool {
	for _, part := range p.Completed {
		if part.PartNumber == partNumber {
			return true
		}
	}
	return false
}

// Add records a confirmed part. Re-adding a part number is a no-op.
func (p *Progress) Add(part model.CompletedPart) {
	if p.Has(part.PartNumber) {
		return
	}
	p.Completed = append(p.Completed, part)
}

// FileStore persists Progress records as one JSON file per intent under a
// local directory.
type FileStore struct {
	dir string
}

// NewFileStore opens (creating if needed) the progress directory. An empty
// dir falls back to a folder under the user cache dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user cache dir: %w", err)
		}
		dir = filepath.Join(base, "coursemedia-uploader")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create progress dir %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(intentID string) string {
	return filepath.Join(s.dir, intentID+".json")
}

// Load returns the saved progress for the intent, or nil when none exists.
func (s *FileStore) Load(intentID string) (*Progress, error) {
	raw, err := os.ReadFile(s.path(intentID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress for intent #%s: %w", intentID, err)
	}
	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode progress for intent #%s: %w", intentID, err)
	}
	return &p, nil
}

// Save writes the progress atomically: a half-written file after a crash
// would make every confirmed part unresumable.
func (s *FileStore) Save(p *Progress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress for intent #%s: %w", p.IntentID, err)
	}
	tmp := s.path(p.IntentID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write progress for intent #%s: %w", p.IntentID, err)
	}
	if err := os.Rename(tmp, s.path(p.IntentID)); err != nil {
		return fmt.Errorf("commit progress for intent #%s: %w", p.IntentID, err)
	}
	return nil
}

// Remove deletes the progress file once the upload is fully completed.
func (s *FileStore) Remove(intentID string) error {
	if err := os.Remove(s.path(intentID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove progress for intent #%s: %w", intentID, err)
	}
	return nil
}
