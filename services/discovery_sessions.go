package services

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

type sessionEntry struct {
	engine   *discovery.Engine
	lastSeen time.Time
}

// SessionRegistry keeps one discovery Engine per browsing session and
// closes sessions nobody has touched for idleTTL.
type SessionRegistry struct {
	gateway discovery.Gateway
	cfg     discovery.EngineConfig
	idleTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

func NewSessionRegistry(gateway discovery.Gateway, cfg discovery.EngineConfig, idleTTL time.Duration, logger *zap.Logger) *SessionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &SessionRegistry{
		gateway:  gateway,
		cfg:      cfg,
		idleTTL:  idleTTL,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*sessionEntry),
	}
}

// Create mounts a new Engine with its initial inputs, which starts the
// first page fetch.
func (r *SessionRegistry) Create(params url.Values, state models.FilterState, sort string) (uuid.UUID, *discovery.Engine) {
	id := uuid.Must(uuid.NewV7())
	cfg := r.cfg
	cfg.Logger = r.logger.With(zap.String("session_id", id.String()))
	engine := discovery.NewEngine(r.gateway, cfg)

	r.mu.Lock()
	r.sessions[id] = &sessionEntry{engine: engine, lastSeen: r.now()}
	r.mu.Unlock()

	engine.Start(params, state, sort)
	r.logger.Debug("discovery session created", zap.String("session_id", id.String()))
	return id, engine
}

// Get returns the session's Engine and marks it as recently used.
func (r *SessionRegistry) Get(id uuid.UUID) (*discovery.Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.engine, true
}

func (r *SessionRegistry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		entry.engine.Close()
	}
	return ok
}

// Sweep closes idle sessions and reports how many it removed.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)
	var idle []*discovery.Engine

	r.mu.Lock()
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			idle = append(idle, entry.engine)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, engine := range idle {
		engine.Close()
	}
	if len(idle) > 0 {
		r.logger.Info("expired idle discovery sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps periodically until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close shuts every session down.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*sessionEntry)
	r.mu.Unlock()

	for _, entry := range sessions {
		entry.engine.Close()
	}
}
