package cache

import "time"

// RateLimiter enforces a sliding-window request budget per id, persisted
// through the cache so separate short-lived invocations share the window.
// The space-info endpoint allows 5 requests per minute; the default budget
// stays one below that.
type RateLimiter struct {
	cache  *Cache
	key    string
	window time.Duration
	max    int
	now    func() time.Time
}

const (
	// RateLimitWindow is the sliding window for space-info requests.
	RateLimitWindow = time.Minute
	// RateLimitMaxRequests is the request budget per window per space.
	RateLimitMaxRequests = 4
)

// NewRateLimiter returns a limiter persisting its window under key.
func NewRateLimiter(c *Cache, key string, window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		cache:  c,
		key:    key,
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// Allow reports whether a request for id fits the window, recording it when
// it does. Persistence errors fail open: a broken cache must not block the
// request path.
func (r *RateLimiter) Allow(id string) bool {
	window := map[string][]time.Time{}
	if _, err := r.cache.Read(r.key, 0, &window); err != nil {
		return true
	}

	now := r.now()
	recent := window[id][:0]
	for _, at := range window[id] {
		if now.Sub(at) < r.window {
			recent = append(recent, at)
		}
	}

	if len(recent) >= r.max {
		window[id] = recent
		_ = r.cache.Write(r.key, window)
		return false
	}

	window[id] = append(recent, now)
	_ = r.cache.Write(r.key, window)
	return true
}
