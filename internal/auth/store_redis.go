package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisToken reads a token stored under auth:token:<user>.
type RedisToken struct {
	rdb  *redis.Client
	user string
}

func NewRedisToken(rdb *redis.Client, user string) *RedisToken {
	return &RedisToken{rdb: rdb, user: strings.TrimSpace(user)}
}

func keyToken(user string) string { return "auth:token:" + strings.TrimSpace(user) }

func (r *RedisToken) Token(ctx context.Context) (string, error) {
	if r == nil || r.rdb == nil {
		return "", nil
	}
	if r.user == "" {
		return "", nil
	}
	v, err := r.rdb.Get(ctx, keyToken(r.user)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis token: %w", err)
	}
	return strings.TrimSpace(v), nil
}

// ParseRedisURL converts a redis:// or rediss:// URL into client options.
// rediss enables TLS.
func ParseRedisURL(raw string) (*redis.Options, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}
