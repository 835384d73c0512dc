package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Modeva-Ecommerce/modeva-discovery/cache"
	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// CachedGateway serves repeated page requests from a PageCache and
// collapses identical in-flight requests into one upstream call. Only
// successful pages are cached.
//
// Cached pages of one result set must agree on the catalog totals. A fresh
// page 1 starts the set over, and a fresh later page whose totals differ
// from the cached page 1 drops the set before it is stored.
type CachedGateway struct {
	next    discovery.Gateway
	cache   cache.PageCache
	timeout time.Duration
	logger  *zap.Logger
	group   singleflight.Group
}

func NewCachedGateway(next discovery.Gateway, pages cache.PageCache, timeout time.Duration, logger *zap.Logger) *CachedGateway {
	if timeout <= 0 {
		timeout = discovery.DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGateway{next: next, cache: pages, timeout: timeout, logger: logger}
}

func (g *CachedGateway) Search(ctx context.Context, req models.SearchRequest) (models.ResultPage, error) {
	setKey := req.Key()
	if page, ok := g.cache.Get(ctx, setKey, req.Page); ok {
		g.logger.Debug("page cache hit", zap.String("set", setKey), zap.Int("page", req.Page))
		return page, nil
	}

	// The shared call must outlive any single caller giving up.
	ch := g.group.DoChan(req.PageKey(), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		page, err := g.next.Search(fetchCtx, req)
		if err != nil {
			return models.ResultPage{}, err
		}
		g.store(fetchCtx, setKey, req.Page, page)
		return page, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.ResultPage{}, res.Err
		}
		return res.Val.(models.ResultPage), nil
	case <-ctx.Done():
		return models.ResultPage{}, discovery.NetworkError(ctx.Err())
	}
}

func (g *CachedGateway) store(ctx context.Context, setKey string, pageNum int, page models.ResultPage) {
	page.Page = pageNum
	if pageNum <= 1 {
		g.cache.InvalidateSet(ctx, setKey)
	} else if first, ok := g.cache.Get(ctx, setKey, 1); ok && !sameTotals(first, page) {
		g.logger.Info("result set changed upstream, dropping cached pages",
			zap.String("set", setKey),
			zap.Int("cached_total", first.TotalCount),
			zap.Int("total", page.TotalCount))
		g.cache.InvalidateSet(ctx, setKey)
	}
	g.cache.Set(ctx, setKey, page)
}

func sameTotals(a, b models.ResultPage) bool {
	return a.TotalCount == b.TotalCount && a.TotalPages == b.TotalPages
}
