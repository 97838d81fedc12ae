// AngelaMos | 2026
// revoker.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker denylists session ids that were logged out before expiry.
type Revoker interface {
	Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type RedisRevoker struct {
	client *redis.Client
	prefix string
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{
		client: client,
		prefix: "session:revoked:",
	}
}

func (r *RedisRevoker) Revoke(
	ctx context.Context,
	sessionID string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, r.prefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (r *RedisRevoker) IsRevoked(
	ctx context.Context,
	sessionID string,
) (bool, error) {
	exists, err := r.client.Exists(ctx, r.prefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}

	return exists > 0, nil
}

// NoopRevoker is used without Redis: logout only clears the cookie and the
// token stays valid until it expires.
type NoopRevoker struct{}

func (NoopRevoker) Revoke(context.Context, string, time.Time) error {
	return nil
}

func (NoopRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}
