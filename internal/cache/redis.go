package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avoronov/fitbook/config"
	"github.com/avoronov/fitbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	scheduleTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, scheduleTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		scheduleTTL: scheduleTTL,
	}
}

func (c *RedisCache) GetWeekSchedule(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error) {
	data, err := c.client.Get(ctx, weekKey(weekStart)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var instances []domain.ClassInstance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (c *RedisCache) SetWeekSchedule(ctx context.Context, weekStart time.Time, instances []domain.ClassInstance) error {
	payload, err := json.Marshal(instances)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, weekKey(weekStart), payload, c.scheduleTTL).Err()
}

func (c *RedisCache) InvalidateWeek(ctx context.Context, weekStart time.Time) error {
	return c.client.Del(ctx, weekKey(weekStart)).Err()
}

func weekKey(weekStart time.Time) string {
	return fmt.Sprintf("cache:schedule:%s", weekStart.Format("2006-01-02"))
}
