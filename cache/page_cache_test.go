package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

func TestMemoryPageCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryPageCache(time.Minute, 10)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", models.ResultPage{Page: 1, TotalCount: 42, TotalPages: 3})
	page, ok := c.Get(ctx, "k", 1)
	require.True(t, ok)
	assert.Equal(t, 42, page.TotalCount)
	_, ok = c.Get(ctx, "k", 2)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "k", 1)
	assert.False(t, ok)
}

func TestMemoryPageCacheSetExpiresAsAUnit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryPageCache(time.Minute, 10)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", models.ResultPage{Page: 1, TotalCount: 42, TotalPages: 3})
	now = now.Add(50 * time.Second)
	c.Set(ctx, "k", models.ResultPage{Page: 2, TotalCount: 42, TotalPages: 3})

	// Page 2 is younger but lives only as long as the set.
	now = now.Add(10 * time.Second)
	_, ok := c.Get(ctx, "k", 2)
	assert.False(t, ok)

	c.Set(ctx, "k", models.ResultPage{Page: 2, TotalCount: 40, TotalPages: 3})
	_, ok = c.Get(ctx, "k", 1)
	assert.False(t, ok, "expired set restarts empty")
	assert.Equal(t, 1, c.Len())
}

func TestMemoryPageCacheInvalidateSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryPageCache(time.Minute, 10)
	c.Set(ctx, "a", models.ResultPage{Page: 1})
	c.Set(ctx, "a", models.ResultPage{Page: 2})
	c.Set(ctx, "b", models.ResultPage{Page: 1})

	c.InvalidateSet(ctx, "a")
	_, ok := c.Get(ctx, "a", 2)
	assert.False(t, ok)
	_, ok = c.Get(ctx, "b", 1)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryPageCacheEvictsOldestSet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryPageCache(time.Hour, 3)
	c.now = func() time.Time { return now }

	for i := 1; i <= 4; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), models.ResultPage{Page: 1})
		c.Set(ctx, fmt.Sprintf("k%d", i), models.ResultPage{Page: 2})
		now = now.Add(time.Second)
	}

	assert.Equal(t, 6, c.Len())
	_, ok := c.Get(ctx, "k1", 1)
	assert.False(t, ok)
	_, ok = c.Get(ctx, "k4", 2)
	assert.True(t, ok)

	c.Invalidate(ctx)
	assert.Zero(t, c.Len())
}

func TestRedisPageCacheUnavailableIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisPageCache(client, time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, "k", models.ResultPage{Page: 1})
	_, ok := c.Get(ctx, "k", 1)
	assert.False(t, ok)
	c.InvalidateSet(ctx, "k")
	c.Invalidate(ctx)
}
