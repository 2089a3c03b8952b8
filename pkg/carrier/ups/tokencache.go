package ups

import (
	"sync"
	"time"
)

// expiryMargin guards against clock skew and in-flight request latency: a
// token within this window of its expiry is treated as already expired.
const expiryMargin = 60 * time.Second

// TokenCache holds at most one cached access token with its absolute
// expiry. It is safe for concurrent use and scoped to one process; it is
// always constructed explicitly and passed to the Authenticator so tests
// can inject a fresh instance per case.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewTokenCache creates an empty token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Get returns the cached token, or false if no token is stored or the
// stored token is within the expiry margin. A near-expired token is
// evicted as a side effect.
func (c *TokenCache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return "", false
	}
	if !c.expiresAt.After(c.now().Add(expiryMargin)) {
		c.token = ""
		c.expiresAt = time.Time{}
		return "", false
	}
	return c.token, true
}

// Set stores a token expiring after ttl, unconditionally replacing any
// prior entry.
func (c *TokenCache) Set(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = c.now().Add(ttl)
}

// Clear unconditionally empties the cache.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
