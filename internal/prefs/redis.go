package prefs

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ichor-news/backend/internal/models"
)

// Redis keeps one hash per user under prefs:<user> with bias and style
// fields. Field-level HSET makes each mutation atomic on the server side.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the given address (host:port or a redis:// URL) and
// verifies connectivity.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, user string) (models.Preference, error) {
	fields, err := r.client.HGetAll(ctx, key(user)).Result()
	if err != nil {
		return models.Preference{}, fmt.Errorf("load preference: %w", err)
	}

	p := models.Preference{Style: fields["style"]}
	if raw, ok := fields["bias"]; ok && raw != "" {
		p.Bias = models.ParseBias(raw)
	}
	return p, nil
}

func (r *Redis) SetBias(ctx context.Context, user string, bias models.Bias) error {
	if err := r.client.HSet(ctx, key(user), "bias", string(bias)).Err(); err != nil {
		return fmt.Errorf("store bias: %w", err)
	}
	return nil
}

func (r *Redis) SetStyle(ctx context.Context, user string, style string) error {
	if err := r.client.HSet(ctx, key(user), "style", style).Err(); err != nil {
		return fmt.Errorf("store style: %w", err)
	}
	return nil
}

func (r *Redis) HasTakenQuiz(ctx context.Context, user string) (bool, error) {
	bias, err := r.client.HGet(ctx, key(user), "bias").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load bias: %w", err)
	}
	return bias != "", nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func key(user string) string {
	return "prefs:" + user
}
