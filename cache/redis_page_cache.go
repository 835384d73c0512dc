package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

const redisSetPrefix = "discovery:set:"

// RedisPageCache shares result pages between API instances. Each result set
// is one hash, field per page, so the set expires and is deleted as a unit.
type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisPageCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisPageCache {
	if ttl <= 0 {
		ttl = TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPageCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisPageCache) Get(ctx context.Context, setKey string, page int) (models.ResultPage, bool) {
	raw, err := c.client.HGet(ctx, redisSetPrefix+setKey, strconv.Itoa(page)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("page cache read failed", zap.Error(err))
		}
		return models.ResultPage{}, false
	}
	var result models.ResultPage
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("page cache entry corrupt", zap.String("set", setKey), zap.Int("page", page), zap.Error(err))
		return models.ResultPage{}, false
	}
	return result, true
}

func (c *RedisPageCache) Set(ctx context.Context, setKey string, page models.ResultPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	key := redisSetPrefix + setKey

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(page.Page), raw)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("page cache write failed", zap.Error(err))
		return
	}
	// Negative TTL: the hash was just created. Later pages keep its expiry.
	if ttl.Val() < 0 {
		if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
			c.logger.Warn("page cache expiry failed", zap.Error(err))
		}
	}
}

func (c *RedisPageCache) InvalidateSet(ctx context.Context, setKey string) {
	if err := c.client.Del(ctx, redisSetPrefix+setKey).Err(); err != nil {
		c.logger.Warn("page cache set invalidate failed", zap.Error(err))
	}
}

func (c *RedisPageCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisSetPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("page cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("page cache invalidate failed", zap.Error(err))
		}
	}
}
