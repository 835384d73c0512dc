package discovery

import "sync"

// DefaultLeadDistance is how far (in px) below the viewport the sentinel may
// still be when the next page is requested.
const DefaultLeadDistance = 200

// Continuation turns sentinel observations into "load more" signals. It is
// edge triggered: one signal per transition from outside to inside the
// lead zone, none while the sentinel stays inside.
type Continuation struct {
	mu           sync.Mutex
	leadDistance float64
	intersecting bool
	onLoadMore   func()
}

// NewContinuation returns a Continuation calling onLoadMore on every edge.
// A negative lead distance is treated as zero.
func NewContinuation(leadDistance float64, onLoadMore func()) *Continuation {
	if leadDistance < 0 {
		leadDistance = 0
	}
	return &Continuation{leadDistance: leadDistance, onLoadMore: onLoadMore}
}

// ObserveDistance records the gap between the viewport's bottom edge and
// the sentinel. Zero or negative means the sentinel is on screen.
func (c *Continuation) ObserveDistance(distance float64) bool {
	return c.ObserveIntersecting(distance <= c.leadDistance)
}

// ObserveIntersecting records an intersection state computed elsewhere
// (for example by a browser observer already configured with the margin).
// It reports whether a signal was emitted.
func (c *Continuation) ObserveIntersecting(intersecting bool) bool {
	c.mu.Lock()
	entered := intersecting && !c.intersecting
	c.intersecting = intersecting
	c.mu.Unlock()

	if entered && c.onLoadMore != nil {
		c.onLoadMore()
	}
	return entered
}

// Intersecting reports the last observed state.
func (c *Continuation) Intersecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intersecting
}

// Rearm forgets the last observation so that a sentinel still on screen
// counts as entering again. Called when the list is replaced.
func (c *Continuation) Rearm() {
	c.mu.Lock()
	c.intersecting = false
	c.mu.Unlock()
}

func (c *Continuation) LeadDistance() float64 {
	return c.leadDistance
}
