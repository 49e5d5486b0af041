package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// TokenBlacklist remembers logged-out tokens until they expire naturally.
// Redis is used when a client is given; otherwise entries live in process memory.
type TokenBlacklist struct {
	rc  *redis.Client
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewTokenBlacklist creates a blacklist; rc may be nil.
func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, now: time.Now, entries: map[string]time.Time{}}
}

// Revoke stores a token until expiresAt. Already expired tokens are ignored.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	now := b.now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	key := blacklistKey(token)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return b.rc.Set(ctx, key, "1", ttl).Err()
	}
	b.mu.Lock()
	for k, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, k)
		}
	}
	b.entries[key] = expiresAt
	b.mu.Unlock()
	return nil
}

// IsRevoked reports whether the token was revoked before natural expiration.
// Redis errors fail open so an outage cannot lock every user out.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	key := blacklistKey(token)
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, key).Result()
		if err != nil {
			Sugar.Warnf("token blacklist lookup failed: %v", err)
			return false
		}
		return n > 0
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[key]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if b.now().After(expiresAt) {
		b.mu.Lock()
		delete(b.entries, key)
		b.mu.Unlock()
		return false
	}
	return true
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}
