package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"empowerpwd/config"
	"empowerpwd/logger"
	"empowerpwd/models"

	"github.com/go-redis/redis/v8"
	"github.com/samber/lo"
)

const userSummaryKeyPrefix = "user_summary:"

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, redisConfig config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisConfig.Host, redisConfig.Port),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// SummaryCache keeps user summaries close to the inbox aggregation.
type SummaryCache interface {
	GetSummaries(ctx context.Context, ids []int64) (map[int64]models.UserSummary, error)
	SetSummaries(ctx context.Context, summaries []models.UserSummary) error
	Invalidate(ctx context.Context, id int64) error
}

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func userSummaryKey(id int64) string {
	return userSummaryKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisSummaryCache) GetSummaries(ctx context.Context, ids []int64) (map[int64]models.UserSummary, error) {
	found := make(map[int64]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	values, err := c.client.MGet(ctx, lo.Map(ids, func(id int64, _ int) string { return userSummaryKey(id) })...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget summaries: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s models.UserSummary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			logger.Log.Warnf("Dropping malformed cached summary: %v", err)
			continue
		}
		found[s.ID] = s
	}
	return found, nil
}

func (c *RedisSummaryCache) SetSummaries(ctx context.Context, summaries []models.UserSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, s := range summaries {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		pipe.Set(ctx, userSummaryKey(s.ID), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache summaries: %w", err)
	}
	return nil
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, userSummaryKey(id)).Err()
}
