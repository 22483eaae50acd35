package session

import (
	"sync"
	"time"
)

// RevokedTokens records the IDs of session tokens that were logged out before
// they expired.
type RevokedTokens interface {
	Add(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	Cleanup(now time.Time) int
}

// InMemoryRevokedTokens is a map backed RevokedTokens.
type InMemoryRevokedTokens struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

func NewInMemoryRevokedTokens() *InMemoryRevokedTokens {
	return &InMemoryRevokedTokens{
		revoked: make(map[string]time.Time),
	}
}

func (c *InMemoryRevokedTokens) Add(jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	return nil
}

func (c *InMemoryRevokedTokens) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

// Cleanup drops entries whose token would have expired anyway and returns how
// many were removed.
func (c *InMemoryRevokedTokens) Cleanup(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
			removed++
		}
	}
	return removed
}
