package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/usermatch/internal/config"
	"github.com/khoahotran/usermatch/pkg/logger"
)

func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.")
	return rdb, nil
}

// RedisWindowCounter counts hits per key inside a fixed window.
type RedisWindowCounter struct {
	rdb redis.Cmdable
}

func NewRedisWindowCounter(rdb redis.Cmdable) *RedisWindowCounter {
	return &RedisWindowCounter{rdb: rdb}
}

// Increment adds one hit to key and returns the count so far. The key
// expires with the window it belongs to.
func (c *RedisWindowCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment rate window %q: %w", key, err)
	}
	return incr.Val(), nil
}
