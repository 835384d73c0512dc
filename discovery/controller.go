package discovery

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// DefaultFetchTimeout bounds a single gateway call.
const DefaultFetchTimeout = 10 * time.Second

// Controller owns one discovery session at a time: the pinned request, the
// accumulated items and the paging state. All transitions happen under mu;
// the gateway call is the only thing that runs outside it, and its result
// is applied only if its token is still current.
type Controller struct {
	gateway Gateway
	logger  *zap.Logger
	timeout time.Duration

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu          sync.Mutex
	started     bool
	closed      bool
	request     models.SearchRequest
	items       []models.StorefrontProduct
	currentPage int
	totalCount  int
	totalPages  int
	hasMore     bool
	status      Status
	token       uint64
	pendingPage int
	cancel      context.CancelFunc
	failure     *SnapshotError
	changed     chan struct{}
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFetchTimeout bounds each gateway call. A timeout surfaces as a
// network error.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewController(gateway Gateway, opts ...Option) *Controller {
	c := &Controller{
		gateway: gateway,
		logger:  zap.NewNop(),
		timeout: DefaultFetchTimeout,
		status:  StatusIdle,
		changed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseCtx, c.stop = context.WithCancel(context.Background())
	return c
}

// Search starts a new session for req unless req belongs to the current
// result set. The request's page is ignored; sessions always start at 1.
// It reports whether a new session was started.
func (c *Controller) Search(req models.SearchRequest) bool {
	req = req.WithPage(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.started && c.request.SameResultSet(req) {
		return false
	}

	c.started = true
	c.request = req
	c.items = nil
	c.currentPage = 1
	c.totalCount = 0
	c.totalPages = 0
	c.hasMore = false
	c.failure = nil

	c.logger.Debug("discovery session reset", zap.String("request", req.Key()))
	c.issueLocked(1, StatusLoading)
	return true
}

// LoadMore requests the page after the current one. It is a no-op unless
// the session is idle with more pages to fetch; in the error state it
// retries the failed page instead. It reports whether a fetch was issued.
func (c *Controller) LoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started || !c.hasMore {
		return false
	}
	switch c.status {
	case StatusIdle:
		c.issueLocked(c.currentPage+1, StatusLoadingMore)
		return true
	case StatusError:
		return c.retryLocked()
	default:
		return false
	}
}

// Retry re-issues the request that failed, unchanged.
func (c *Controller) Retry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return false
	}
	return c.retryLocked()
}

func (c *Controller) retryLocked() bool {
	if c.status != StatusError {
		return false
	}
	status := StatusLoadingMore
	if c.pendingPage <= 1 {
		status = StatusLoading
	}
	c.logger.Debug("retrying discovery page", zap.Int("page", c.pendingPage))
	c.issueLocked(c.pendingPage, status)
	return true
}

func (c *Controller) issueLocked(page int, status Status) {
	if c.cancel != nil {
		c.cancel()
	}
	c.token++
	token := c.token
	ctx, cancel := context.WithTimeout(c.baseCtx, c.timeout)
	c.cancel = cancel
	c.status = status
	c.pendingPage = page
	req := c.request.WithPage(page)
	c.notifyLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		result, err := c.gateway.Search(ctx, req)
		c.resolve(token, req, result, err)
	}()
}

func (c *Controller) resolve(token uint64, req models.SearchRequest, result models.ResultPage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		c.logger.Debug("discarding stale discovery response",
			zap.Int("page", req.Page),
			zap.String("request", req.Key()),
			zap.Bool("failed", err != nil))
		return
	}
	c.cancel = nil

	if err != nil {
		kind := KindOf(err)
		c.status = StatusError
		c.failure = &SnapshotError{Kind: kind, Message: UserMessage(kind), Page: req.Page}
		c.logger.Warn("discovery fetch failed",
			zap.Int("page", req.Page),
			zap.String("kind", string(kind)),
			zap.Error(err))
		c.notifyLocked()
		return
	}

	if result.Page != req.Page {
		c.logger.Warn("catalog returned a different page than requested",
			zap.Int("requested", req.Page),
			zap.Int("returned", result.Page))
	}

	if c.status == StatusLoading {
		c.items = slices.Clone(result.Items)
	} else {
		c.items = append(c.items, result.Items...)
	}
	c.currentPage = req.Page
	c.totalCount = result.TotalCount
	c.totalPages = result.TotalPages
	c.hasMore = req.Page < result.TotalPages
	c.status = StatusIdle
	c.failure = nil

	c.logger.Debug("discovery page applied",
		zap.Int("page", req.Page),
		zap.Int("items", len(result.Items)),
		zap.Int("accumulated", len(c.items)),
		zap.Bool("has_more", c.hasMore))
	c.notifyLocked()
}

func (c *Controller) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Items:       slices.Clone(c.items),
		Status:      c.status,
		HasMore:     c.hasMore,
		TotalCount:  c.totalCount,
		TotalPages:  c.totalPages,
		CurrentPage: c.currentPage,
		Request:     c.request,
	}
	if s.Items == nil {
		s.Items = []models.StorefrontProduct{}
	}
	if c.failure != nil {
		f := *c.failure
		s.Error = &f
	}
	return s
}

// Changed returns a channel that is closed on the next state change.
func (c *Controller) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Settled waits until no fetch is in flight and returns that snapshot.
func (c *Controller) Settled(ctx context.Context) (Snapshot, error) {
	for {
		c.mu.Lock()
		if !c.status.Busy() {
			s := c.snapshotLocked()
			c.mu.Unlock()
			return s, nil
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

// Close invalidates any in-flight fetch and waits for its goroutine. The
// gateway must honour context cancellation for Close to return promptly.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.status.Busy() {
		c.status = StatusIdle
	}
	c.notifyLocked()
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}
