package upload

import (
	"fmt"
	"strings"

	"github.com/coursemedia/uploads-ms-go/internal/model"
)

const MinFileSize = 1

// per-type upload ceilings
const (
	MaxVideoSize = int64(4) << 30 // 4 GiB
	MaxImageSize = int64(20) << 20
)

var AllowedMimeTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

func IsMimeTypeAllowed(mimeType string) bool {
	return AllowedMimeTypes[mimeType]
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/")
}

// KindForMimeType maps a mime type onto the asset kind recorded at
// completion time.
func KindForMimeType(mimeType string) string {
	if IsVideo(mimeType) {
		return model.AssetKindVideo
	}
	return model.AssetKindImage
}

// ValidateFile checks a declared size and mime type against the per-type
// policy. Violations wrap ErrInvalidFile.
func ValidateFile(size int64, mimeType string) error {
	if !IsMimeTypeAllowed(mimeType) {
		return fmt.Errorf("%w: unsupported mime-type %q", ErrInvalidFile, mimeType)
	}
	if size < MinFileSize {
		return fmt.Errorf("%w: declared size %d is too small", ErrInvalidFile, size)
	}
	max := MaxImageSize
	if IsVideo(mimeType) {
		max = MaxVideoSize
	}
	if size > max {
		return fmt.Errorf("%w: declared size %d exceeds the %d-byte limit for %q", ErrInvalidFile, size, max, mimeType)
	}
	return nil
}
