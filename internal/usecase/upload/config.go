package upload

import "time"

// Config carries the upload policy knobs shared by the intent and
// multipart services.
type Config struct {
	Bucket             string
	IntentTTL          time.Duration
	UploadURLExpiry    time.Duration
	PartURLExpiry      time.Duration
	MultipartThreshold int64
	MinPartSize        int64
	MaxParts           int
}
