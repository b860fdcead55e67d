// Package signedview resolves storage object keys to short-lived signed
// view URLs, batching and caching so renders of large media lists cost
// at most one network round trip.
package signedview

import (
	"context"
	"sync"
	"time"

	"github.com/9r89uf8/mediagate/internal/client/api"
	"github.com/9r89uf8/mediagate/internal/logging"
)

// cacheSlack is subtracted from the URL lifetime so a URL handed out
// near expiry does not die in the renderer's hands.
const cacheSlack = 30 * time.Second

type cachedURL struct {
	url       string
	expiresAt time.Time
}

// Resolver maps object keys to signed URLs through an expiring
// in-memory cache. Failures degrade: a key that cannot be signed is
// simply absent from the result, never an error for the whole batch.
type Resolver struct {
	client api.Client
	logger logging.Logger
	ttl    time.Duration

	now func() time.Time

	mu    sync.Mutex
	cache map[string]cachedURL
}

func NewResolver(client api.Client, ttl time.Duration, logger logging.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger.With("module", "signedview_resolver"),
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]cachedURL),
	}
}

// Resolve returns signed URLs for keys. Duplicates and empty keys are
// coalesced; cached URLs are served without a network call; an empty
// input returns an empty map immediately. When the sign request fails
// the cached portion is still returned and the miss is logged.
func (r *Resolver) Resolve(ctx context.Context, keys []string) map[string]string {
	result := make(map[string]string)
	if len(keys) == 0 {
		return result
	}

	now := r.now()
	missing := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))

	r.mu.Lock()
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			result[key] = entry.url
			continue
		}
		missing = append(missing, key)
	}
	r.mu.Unlock()

	if len(missing) == 0 {
		return result
	}

	signed, err := r.client.SignBatch(ctx, missing)
	if err != nil {
		r.logger.Warn(ctx, "sign batch failed, serving cached subset",
			"requested", len(missing), "error", err)
		return result
	}

	expiresAt := now.Add(r.ttl - cacheSlack)
	r.mu.Lock()
	for key, url := range signed {
		r.cache[key] = cachedURL{url: url, expiresAt: expiresAt}
		result[key] = url
	}
	r.mu.Unlock()

	return result
}

// Forget drops a key from the cache, forcing a re-sign on next resolve.
func (r *Resolver) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, key)
}
