package upload

import "errors"

var (
	// ErrInvalidFile rejects a declared size or mime type the policy does
	// not allow. The request must be fixed, not retried.
	ErrInvalidFile = errors.New("upload: invalid file")
	// ErrRateLimited rejects intent creation once the owner's window is
	// spent. Retry after backoff.
	ErrRateLimited = errors.New("upload: rate limit exceeded")
	// ErrIntentExpired means the TTL elapsed; prior signed URLs are dead
	// and a fresh intent must be requested.
	ErrIntentExpired = errors.New("upload: intent expired")
	// ErrIntentNotFound means no intent matches the given id.
	ErrIntentNotFound = errors.New("upload: intent not found")
	// ErrSessionNotFound means no open multipart session for the intent.
	ErrSessionNotFound = errors.New("upload: multipart session not found")
	// ErrInvalidPart rejects a part number outside 1..totalParts or an
	// upload id that does not match the open session.
	ErrInvalidPart = errors.New("upload: invalid part")
	// ErrIncompletePartSet rejects completion with gaps or duplicate
	// etags. The session stays open so missing parts can be supplied.
	ErrIncompletePartSet = errors.New("upload: incomplete part set")
)
