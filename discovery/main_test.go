package discovery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeResult struct {
	page models.ResultPage
	err  error
}

type fakeCall struct {
	req  models.SearchRequest
	resp chan fakeResult
}

func (c *fakeCall) succeed(items []models.StorefrontProduct, total, totalPages int) {
	c.resp <- fakeResult{page: models.ResultPage{
		Items:      items,
		Page:       c.req.Page,
		TotalCount: total,
		TotalPages: totalPages,
	}}
}

func (c *fakeCall) fail(err error) {
	c.resp <- fakeResult{err: err}
}

// fakeGateway hands every search to the test through issued and blocks
// until the test answers it.
type fakeGateway struct {
	ignoreCancel bool
	issued       chan *fakeCall

	mu    sync.Mutex
	calls []*fakeCall
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{issued: make(chan *fakeCall, 64)}
}

func (g *fakeGateway) Search(ctx context.Context, req models.SearchRequest) (models.ResultPage, error) {
	call := &fakeCall{req: req, resp: make(chan fakeResult, 1)}
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
	g.issued <- call

	if g.ignoreCancel {
		r := <-call.resp
		return r.page, r.err
	}
	select {
	case r := <-call.resp:
		return r.page, r.err
	case <-ctx.Done():
		return models.ResultPage{}, NetworkError(ctx.Err())
	}
}

func (g *fakeGateway) next(t *testing.T) *fakeCall {
	t.Helper()
	select {
	case c := <-g.issued:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a gateway call")
		return nil
	}
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func products(prefix string, n int) []models.StorefrontProduct {
	out := make([]models.StorefrontProduct, n)
	for i := range out {
		out[i] = models.StorefrontProduct{
			ID:    fmt.Sprintf("%s-%d", prefix, i+1),
			Name:  fmt.Sprintf("%s product %d", prefix, i+1),
			Price: float64(10 + i),
		}
	}
	return out
}

func settle(t *testing.T, s interface {
	Settled(context.Context) (Snapshot, error)
}) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.Settled(ctx)
	require.NoError(t, err)
	return snap
}
