package port

import "context"

// RateLimiter bounds how often a single owner may create upload intents.
// Allow counts the request and reports whether it fits in the current
// window. Counting and checking are one atomic operation so concurrent
// bursts cannot slip past the limit between a check and an increment.
type RateLimiter interface {
	Allow(ctx context.Context, ownerKey string) (bool, error)
}
