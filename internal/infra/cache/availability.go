package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trimly-app/TRM-BookingService/internal/config"
	"github.com/trimly-app/TRM-BookingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// CachedAvailability закешированный ответ расчёта доступных слотов
type CachedAvailability struct {
	Slots  []domain.AvailableSlot    `json:"slots"`
	Reason domain.AvailabilityReason `json:"reason"`
}

// AvailabilityCache кеш ответов расчёта доступности в Redis.
// Ключ - (мастер, услуга, дата); TTL короткий, а инвалидация по мастеру и дате
// выполняется при каждом создании/отмене/смене статуса бронирования, поэтому
// повторный запрос после конфликта слота никогда не видит устаревший список.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    Logger
}

// NewRedisClient создает клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// New создает кеш доступности с указанным TTL
func New(client *redis.Client, ttl time.Duration, log Logger) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func slotsKey(staffID, serviceID int64, date string) string {
	return fmt.Sprintf("availability:%d:%s:%d", staffID, date, serviceID)
}

func staffDatePattern(staffID int64, date string) string {
	return fmt.Sprintf("availability:%d:%s:*", staffID, date)
}

func staffPattern(staffID int64) string {
	return fmt.Sprintf("availability:%d:*", staffID)
}

// Get возвращает закешированный результат или (nil, nil) при промахе
func (c *AvailabilityCache) Get(ctx context.Context, staffID, serviceID int64, date string) (*CachedAvailability, error) {
	val, err := c.client.Get(ctx, slotsKey(staffID, serviceID, date)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: failed to get availability: %w", err)
	}

	var cached CachedAvailability
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("cache: failed to unmarshal availability: %w", err)
	}
	return &cached, nil
}

// Set сохраняет результат расчёта доступности
func (c *AvailabilityCache) Set(ctx context.Context, staffID, serviceID int64, date string, value *CachedAvailability) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal availability: %w", err)
	}

	if err := c.client.Set(ctx, slotsKey(staffID, serviceID, date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set availability: %w", err)
	}
	return nil
}

// InvalidateStaffDate сбрасывает кеш доступности мастера на указанную дату.
// Вызывается до возврата ответа о создании/отмене бронирования.
func (c *AvailabilityCache) InvalidateStaffDate(ctx context.Context, staffID int64, date string) error {
	return c.deleteByPattern(ctx, staffDatePattern(staffID, date))
}

// InvalidateStaff сбрасывает весь кеш доступности мастера.
// Вызывается при изменении расписания.
func (c *AvailabilityCache) InvalidateStaff(ctx context.Context, staffID int64) error {
	return c.deleteByPattern(ctx, staffPattern(staffID))
}

func (c *AvailabilityCache) deleteByPattern(ctx context.Context, pattern string) error {
	// Количество ключей на пару (мастер, дата) ограничено числом услуг салона,
	// поэтому Keys здесь безопаснее, чем кажется.
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("cache: failed to list keys for %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete keys for %s: %w", pattern, err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache: failed to ping redis: %w", err)
	}
	return nil
}
