package model

import (
	"time"

	"github.com/coursemedia/uploads-ms-go/internal/db"
)

const (
	IntentStatusPending   = "pending"
	IntentStatusCompleted = "completed"
	IntentStatusExpired   = "expired"
)

// UploadIntent is a server-issued record authorising one specific upload
// attempt. It is the reserve half of the two-phase upload: creation reserves
// the object key, completion confirms the bytes landed in storage.
type UploadIntent struct {
	ID               db.UUID   `json:"id"`
	OwnerID          db.UUID   `json:"owner_id"`
	ObjectKey        string    `json:"object_key"`
	Filename         string    `json:"filename"`
	DeclaredSize     int64     `json:"declared_size"`
	DeclaredMimeType string    `json:"declared_mime_type"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Expired reports whether the intent's TTL has elapsed at the given instant.
// Expiry is lazy: rows are never swept, callers check on read.
func (i *UploadIntent) Expired(now time.Time) bool {
	return i.Status == IntentStatusExpired || now.After(i.ExpiresAt)
}

// MultipartSession tracks an open provider-side multipart upload for one
// intent. The row is deleted on successful completion or explicit abort.
type MultipartSession struct {
	IntentID   db.UUID   `json:"intent_id"`
	UploadID   string    `json:"upload_id"`
	PartSize   int64     `json:"part_size"`
	TotalParts int       `json:"total_parts"`
	CreatedAt  time.Time `json:"created_at"`
}

// CompletedPart is one confirmed part of a multipart upload.
type CompletedPart struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
}
