package cache

import (
	"context"
	"time"
)

// Cache memoizes extracted page text keyed by extraction mode and URL.
// The same URL routinely shows up in both the primary and supplementary
// search result sets, and a composition retry re-acquires every page;
// the cache keeps those from hitting the extraction provider again.
type Cache interface {
	// Get returns the cached text for key, if present and not expired
	Get(ctx context.Context, key string) (string, bool)

	// Set stores text under key for at most ttl
	Set(ctx context.Context, key, text string, ttl time.Duration) error
}
