// Package lock holds the cross-replica run lease used when several
// roster-sync processes share one database.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roster-sync/internal/config"
	"roster-sync/internal/constants"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisGuard is a SET NX PX lease. Only the holder's token can release it,
// and the TTL frees it if the holder dies mid-run.
type RedisGuard struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger

	mu    sync.Mutex
	token string
}

func NewRedisGuard(client *redis.Client, key string, ttl time.Duration, logger zerolog.Logger) *RedisGuard {
	return &RedisGuard{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With().Str("component", "redis_guard").Str("key", key).Logger(),
	}
}

// NewClient connects to REDIS_URL and checks it answers.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opts.ReadTimeout = constants.DatabaseTimeout
	opts.WriteTimeout = constants.DatabaseTimeout

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (g *RedisGuard) TryAcquire(ctx context.Context) (bool, error) {
	token, err := gonanoid.New()
	if err != nil {
		return false, fmt.Errorf("failed to generate lease token: %w", err)
	}

	ok, err := g.client.SetNX(ctx, g.key, token, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lease: %w", err)
	}
	if !ok {
		g.logger.Debug().Msg("run lease held by another replica")
		return false, nil
	}

	g.mu.Lock()
	g.token = token
	g.mu.Unlock()
	return true, nil
}

func (g *RedisGuard) Release(ctx context.Context) error {
	g.mu.Lock()
	token := g.token
	g.token = ""
	g.mu.Unlock()

	if token == "" {
		return nil
	}

	n, err := releaseScript.Run(ctx, g.client, []string{g.key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release run lease: %w", err)
	}
	if n == 0 {
		g.logger.Warn().Msg("run lease expired before release")
	}
	return nil
}
