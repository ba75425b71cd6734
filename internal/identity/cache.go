package identity

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	authRefCacheKey     = "auth_ref"
	defaultExpiryMargin = 30 * time.Second
	// Used when the identity service returns no expiry.
	defaultTokenTTL = 5 * time.Minute
)

// TokenCache keeps the current AuthRef until shortly before its token
// expires. It wraps patrickmn/go-cache so expired references disappear on
// their own and the next GetToken re-authenticates.
//
// Thread-safety: All methods are safe for concurrent use.
type TokenCache struct {
	cache        *cache.Cache
	margin       time.Duration
	lastAuthMu   sync.RWMutex
	lastAuthTime time.Time
}

// NewTokenCache creates a cache that drops a token margin before its
// expiry. If margin <= 0, defaults to 30 seconds.
func NewTokenCache(margin time.Duration) *TokenCache {
	if margin <= 0 {
		margin = defaultExpiryMargin
	}
	return &TokenCache{
		cache:  cache.New(defaultTokenTTL, 2*defaultTokenTTL),
		margin: margin,
	}
}

// Get returns the cached AuthRef if it is still usable.
func (tc *TokenCache) Get() (*AuthRef, bool) {
	if cached, found := tc.cache.Get(authRefCacheKey); found {
		return cached.(*AuthRef), true
	}
	return nil, false
}

// Set stores ref until margin before its expiry. A reference that is
// already inside the margin is not cached.
func (tc *TokenCache) Set(ref *AuthRef) {
	ttl := cache.DefaultExpiration
	if !ref.ExpiresAt.IsZero() {
		ttl = time.Until(ref.ExpiresAt) - tc.margin
		if ttl <= 0 {
			return
		}
	}
	tc.cache.Set(authRefCacheKey, ref, ttl)

	tc.lastAuthMu.Lock()
	tc.lastAuthTime = time.Now()
	tc.lastAuthMu.Unlock()
}

// LastAuthTime returns when a token was last cached.
func (tc *TokenCache) LastAuthTime() time.Time {
	tc.lastAuthMu.RLock()
	defer tc.lastAuthMu.RUnlock()
	return tc.lastAuthTime
}

// Margin returns the configured expiry margin.
func (tc *TokenCache) Margin() time.Duration {
	return tc.margin
}

// Flush drops the cached token.
func (tc *TokenCache) Flush() {
	tc.cache.Flush()
}
