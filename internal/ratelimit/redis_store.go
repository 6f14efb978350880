package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore — хранилище счётчиков окон в Redis. Пригодно для нескольких
// инстансов сервиса: окно задаётся TTL ключа при первом инкременте.
type RedisStore struct {
	db *redis.Client
}

// NewRedisStore создает хранилище счётчиков поверх клиента Redis.
func NewRedisStore(db *redis.Client) *RedisStore {
	return &RedisStore{db: db}
}

// Incr атомарно увеличивает счётчик ключа и выставляет TTL окна
// при первом инкременте.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	const op = "ratelimit.RedisStore.Incr"

	pipe := s.db.TxPipeline()
	incr := pipe.Incr(ctx, "ratelimit:"+key)
	pipe.ExpireNX(ctx, "ratelimit:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(incr.Val()), nil
}
