package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	platformredis "treasurehunt/internal/platform/redis"
)

// RevocationStore records revoked token IDs until their natural expiry.
// Both implementations satisfy middleware.RevocationChecker.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

const revocationKeyPrefix = "revoked_token:"

// RedisRevocations stores revoked jtis as TTL'd Redis keys so revocation
// survives restarts and is shared between instances.
type RedisRevocations struct {
	client *platformredis.Client
}

// NewRedisRevocations constructs a Redis-backed revocation store.
func NewRedisRevocations(client *platformredis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevocations) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// InMemoryRevocations keeps revoked jtis in a map. Used when Redis is not
// configured; revocations do not survive a restart.
type InMemoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewInMemoryRevocations creates an empty in-memory revocation store.
func NewInMemoryRevocations() *InMemoryRevocations {
	return &InMemoryRevocations{revoked: make(map[string]time.Time)}
}

func (r *InMemoryRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (r *InMemoryRevocations) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(r.revoked, jti)
		return false, nil
	}
	return true, nil
}
