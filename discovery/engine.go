package discovery

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// EngineConfig tunes an Engine. Zero values fall back to package defaults.
type EngineConfig struct {
	PageLimit    int
	LeadDistance float64
	FetchTimeout time.Duration
	Logger       *zap.Logger
}

// Engine wires the composer, the controller and the scroll continuation
// together. It holds the inputs every filter widget writes to, and every
// write recomposes the request from all of them.
type Engine struct {
	composer     Composer
	controller   *Controller
	continuation *Continuation
	logger       *zap.Logger

	mu     sync.Mutex
	params url.Values
	state  models.FilterState
	sort   string
}

func NewEngine(gateway Gateway, cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lead := cfg.LeadDistance
	if lead == 0 {
		lead = DefaultLeadDistance
	}

	e := &Engine{
		composer: Composer{Limit: cfg.PageLimit},
		controller: NewController(gateway,
			WithLogger(logger),
			WithFetchTimeout(cfg.FetchTimeout)),
		logger: logger,
		params: url.Values{},
	}
	e.continuation = NewContinuation(lead, func() { e.controller.LoadMore() })
	return e
}

// Start mounts the engine with its initial inputs and fetches page 1.
func (e *Engine) Start(params url.Values, state models.FilterState, sort string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = cloneValues(params)
	e.state = state
	e.sort = sort
	return e.recomposeLocked()
}

func (e *Engine) SetFilters(opts models.FilterOptions) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Options = opts
	return e.recomposeLocked()
}

func (e *Engine) SetSort(sort string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sort = sort
	return e.recomposeLocked()
}

// SetQuery is the header search box entry point.
func (e *Engine) SetQuery(q string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Query = q
	return e.recomposeLocked()
}

func (e *Engine) SetCountry(country string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Country = country
	return e.recomposeLocked()
}

// SetURLParams replaces the URL-derived overrides, e.g. after navigation.
func (e *Engine) SetURLParams(params url.Values) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = cloneValues(params)
	return e.recomposeLocked()
}

func (e *Engine) recomposeLocked() bool {
	req, issues := e.composer.ComposeReport(e.params, e.state, e.sort)
	for _, issue := range issues {
		e.logger.Debug("dropped discovery input",
			zap.String("field", issue.Field),
			zap.String("reason", issue.Msg))
	}
	if !e.controller.Search(req) {
		return false
	}
	e.continuation.Rearm()
	return true
}

// ObserveDistance feeds a sentinel distance to the scroll continuation.
func (e *Engine) ObserveDistance(distance float64) bool {
	return e.continuation.ObserveDistance(distance)
}

// ObserveIntersecting feeds a sentinel intersection state to the scroll
// continuation.
func (e *Engine) ObserveIntersecting(intersecting bool) bool {
	return e.continuation.ObserveIntersecting(intersecting)
}

func (e *Engine) LoadMore() bool { return e.controller.LoadMore() }
func (e *Engine) Retry() bool { return e.controller.Retry() }

func (e *Engine) Snapshot() Snapshot { return e.controller.Snapshot() }

func (e *Engine) Changed() <-chan struct{} { return e.controller.Changed() }

func (e *Engine) Settled(ctx context.Context) (Snapshot, error) {
	return e.controller.Settled(ctx)
}

// Inputs returns copies of the current URL params, filter state and sort.
func (e *Engine) Inputs() (url.Values, models.FilterState, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneValues(e.params), e.state, e.sort
}

func (e *Engine) Close() {
	e.controller.Close()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = append([]string(nil), vals...)
	}
	return out
}
