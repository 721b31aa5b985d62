package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
)

const (
	keyPrefix     = "demo:slots:bookable"
	generationKey = "demo:slots:generation"
)

// Cache кэш снимка свободных слотов в Redis.
// Инвалидация делается сменой поколения: старые ключи просто доживают свой TTL.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCache создает кэш снимков
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: client, ttl: ttl}
}

// Connect создает клиента Redis и проверяет его ping.
// При ошибке клиент закрывается и кэш не создается: вызывающий работает с nil-кэшем.
func Connect(ctx context.Context, opts *redis.Options, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrCacheUnavailable, opts.Addr, err)
	}
	return NewCache(client, ttl), nil
}

// Close закрывает соединение с Redis
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.redis.Close()
}

// Get возвращает снимок окна [from, to) и поколение, под которым его искали; ok=false при промахе.
// При промахе снимок из БД нужно сохранять через Set именно с этим поколением:
// если между Get и Set прошла инвалидация, запись окажется недостижимой.
// Nil-кэш (Redis выключен) всегда промахивается.
func (c *Cache) Get(ctx context.Context, from, to time.Time) ([]*domain.Slot, int64, bool, error) {
	if c == nil {
		return nil, 0, false, nil
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.redis.Get(ctx, c.key(gen, from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("%w: Get: %w", ErrCacheRead, err)
	}

	var slots []*domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, gen, false, fmt.Errorf("%w: Get: %v", ErrCacheDecode, err)
	}

	return slots, gen, true, nil
}

// Set сохраняет снимок окна [from, to) под поколением gen, полученным из Get
func (c *Cache) Set(ctx context.Context, gen int64, from, to time.Time, slots []*domain.Slot) error {
	if c == nil {
		return nil
	}

	if slots == nil {
		slots = []*domain.Slot{}
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("%w: Set - marshal: %v", ErrCacheWrite, err)
	}

	if err := c.redis.Set(ctx, c.key(gen, from, to), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %w", ErrCacheWrite, err)
	}

	return nil
}

// Invalidate делает все ранее сохраненные снимки недостижимыми
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.redis.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %w", ErrCacheWrite, err)
	}
	return nil
}

func (c *Cache) generation(ctx context.Context) (int64, error) {
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: generation: %w", ErrCacheRead, err)
	}
	return gen, nil
}

func (c *Cache) key(gen int64, from, to time.Time) string {
	return fmt.Sprintf("%s:%d:%d:%d", keyPrefix, gen, from.Unix(), to.Unix())
}
