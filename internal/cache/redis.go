package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"goldpricebot/internal/config"
	"goldpricebot/internal/snapshot"
)

// probeTimeout bounds every Redis round trip. It is deliberately shorter
// than the source fetch timeouts so a slow cache never holds up price
// collection.
const probeTimeout = 3 * time.Second

// Redis is the primary backend. NewRedis connects and pings; a backend
// that cannot answer the liveness probe is never handed out.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(cfg config.Redis) (*Redis, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else if cfg.Host != "" {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Username: cfg.Username,
			Password: cfg.Password,
		}
	} else {
		return nil, errors.New("redis not configured")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	key := cfg.CacheKey
	if key == "" {
		key = config.DefaultCacheKey
	}
	return &Redis{client: client, key: key}, nil
}

func (r *Redis) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snapshot.New(), nil
		}
		return nil, err
	}
	return snapshot.Decode(raw)
}

func (r *Redis) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
