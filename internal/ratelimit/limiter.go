// Package ratelimit реализует лимитер с фиксированным окном поверх
// подключаемого хранилища счётчиков. Для одного процесса используется
// хранилище в памяти, для нескольких инстансов — Redis.
//
// Счётчик сбрасывается целиком по истечении окна, поэтому всплеск на
// границе окон может превысить номинальный лимит до двух раз — это
// осознанное упрощение алгоритма, а не дефект.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

// Store описывает хранилище счётчиков окон.
type Store interface {
	// Incr увеличивает счётчик ключа в текущем окне и возвращает его
	// новое значение. По истечении окна счётчик начинается заново.
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

// Limiter ограничивает число событий на ключ в пределах окна.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
}

// New создает лимитер: не более max событий на ключ за window.
func New(store Store, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Allow регистрирует событие для ключа. Возвращает RateLimitError,
// если лимит текущего окна исчерпан.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	const op = "ratelimit.Allow"
	n, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > l.max {
		return apperr.NewRateLimit(key)
	}
	return nil
}

type windowCounter struct {
	count       int
	windowStart time.Time
}

// MemoryStore — хранилище счётчиков в памяти процесса. Состояние не
// переживает рестарт и не разделяется между инстансами.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

// NewMemoryStore создает хранилище в памяти. nowFn позволяет подменить
// часы в тестах; при nil используется time.Now.
func NewMemoryStore(nowFn func() time.Time) *MemoryStore {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &MemoryStore{
		counters: make(map[string]*windowCounter),
		now:      nowFn,
	}
}

// Incr увеличивает счётчик ключа, сбрасывая его при истечении окна.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || now.Sub(c.windowStart) > window {
		c = &windowCounter{windowStart: now}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}
