package helper

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"golang.org/x/sync/singleflight"
)

type cachedVerification struct {
	user      dto.AuthResponse
	err       error
	expiresAt time.Time
}

// TokenCache debounces repeated verification of the same token. Entries live for ttl and
// are keyed by the token's SHA-256 so raw tokens are never held in memory.
type TokenCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]cachedVerification
	group   singleflight.Group
}

func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedVerification),
	}
}

func (c *TokenCache) Verify(token string, verify func(string) (dto.AuthResponse, error)) (dto.AuthResponse, error) {
	key := hashToken(token)

	if entry, ok := c.lookup(key); ok {
		return entry.user, entry.err
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		user, err := verify(token)
		c.store(key, cachedVerification{user: user, err: err, expiresAt: c.now().Add(c.ttl)})
		return cachedVerification{user: user, err: err}, nil
	})
	res := v.(cachedVerification)
	return res.user, res.err
}

// size reports live entries; expired ones are dropped as a side effect.
func (c *TokenCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	return len(c.entries)
}

func (c *TokenCache) lookup(key string) (cachedVerification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return cachedVerification{}, false
	}
	now := c.now()
	if !now.Before(entry.expiresAt) || entry.tokenExpired(now) {
		delete(c.entries, key)
		return cachedVerification{}, false
	}
	return entry, true
}

func (c *TokenCache) store(key string, entry cachedVerification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= 1024 {
		c.sweepLocked()
	}
	c.entries[key] = entry
}

func (c *TokenCache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// tokenExpired stops a cached success from outliving the token itself.
func (e cachedVerification) tokenExpired(now time.Time) bool {
	return e.err == nil && e.user.Expiry > 0 && float64(now.Unix()) >= e.user.Expiry
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
