package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

const TTL = 30 * time.Second

// PageCache stores catalog result pages grouped by result set (the request
// key without its page). All pages of a set share one expiry, counted from
// the first page cached, and are dropped together. Caches are best effort:
// a failure to read or write is a miss, never an error.
type PageCache interface {
	Get(ctx context.Context, setKey string, page int) (models.ResultPage, bool)
	Set(ctx context.Context, setKey string, page models.ResultPage)
	InvalidateSet(ctx context.Context, setKey string)
	Invalidate(ctx context.Context)
}

// ── In-process cache ─────────────────────────────────────────────────────────

type setEntry struct {
	createdAt time.Time
	pages     map[int]models.ResultPage
}

// MemoryPageCache is a TTL map bounded to maxSets result sets.
type MemoryPageCache struct {
	ttl     time.Duration
	maxSets int
	now     func() time.Time

	mu   sync.RWMutex
	sets map[string]*setEntry
}

func NewMemoryPageCache(ttl time.Duration, maxSets int) *MemoryPageCache {
	if ttl <= 0 {
		ttl = TTL
	}
	if maxSets <= 0 {
		maxSets = 1024
	}
	return &MemoryPageCache{
		ttl:     ttl,
		maxSets: maxSets,
		now:     time.Now,
		sets:    make(map[string]*setEntry),
	}
}

func (c *MemoryPageCache) Get(_ context.Context, setKey string, page int) (models.ResultPage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.sets[setKey]
	if !ok || c.expired(e, c.now()) {
		return models.ResultPage{}, false
	}
	p, ok := e.pages[page]
	return p, ok
}

func (c *MemoryPageCache) Set(_ context.Context, setKey string, page models.ResultPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.sets[setKey]
	if !ok || c.expired(e, now) {
		if !ok && len(c.sets) >= c.maxSets {
			c.evictLocked(now)
		}
		e = &setEntry{createdAt: now, pages: make(map[int]models.ResultPage)}
		c.sets[setKey] = e
	}
	e.pages[page.Page] = page
}

func (c *MemoryPageCache) expired(e *setEntry, now time.Time) bool {
	return now.Sub(e.createdAt) >= c.ttl
}

// evictLocked drops expired sets, or the oldest set if none expired.
func (c *MemoryPageCache) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	expired := false
	for k, e := range c.sets {
		if c.expired(e, now) {
			delete(c.sets, k)
			expired = true
			continue
		}
		if oldestKey == "" || e.createdAt.Before(oldest) {
			oldestKey, oldest = k, e.createdAt
		}
	}
	if !expired && oldestKey != "" {
		delete(c.sets, oldestKey)
	}
}

func (c *MemoryPageCache) InvalidateSet(_ context.Context, setKey string) {
	c.mu.Lock()
	delete(c.sets, setKey)
	c.mu.Unlock()
}

func (c *MemoryPageCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	c.sets = make(map[string]*setEntry)
	c.mu.Unlock()
}

// Len counts cached pages across all sets, expired ones included.
func (c *MemoryPageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.sets {
		n += len(e.pages)
	}
	return n
}
