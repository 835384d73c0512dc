package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

func catalogServer(t *testing.T, handler http.HandlerFunc) *HTTPSearchGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPSearchGateway(srv.URL + "/api/v1/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sampleRequest(page int) models.SearchRequest {
	minPrice := 50.0
	return models.SearchRequest{
		Q:        "lamp",
		Category: "Lighting",
		MinPrice: &minPrice,
		Sort:     models.SortNewest,
		Page:     page,
		Limit:    18,
	}
}

func TestHTTPSearchGatewaySendsQueryAndDecodesPage(t *testing.T) {
	gw := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/store/products", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "lamp", q.Get("q"))
		assert.Equal(t, "Lighting", q.Get("category"))
		assert.Equal(t, "50", q.Get("minPrice"))
		assert.Equal(t, "newest", q.Get("sort"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "18", q.Get("limit"))

		writeJSON(w, http.StatusOK, models.ApiResponse{
			Message: "ok",
			Data:    []models.StorefrontProduct{{ID: "a", Name: "Desk lamp", Price: 55}},
			Meta:    models.NewPagination(2, 18, 42),
		})
	})

	page, err := gw.Search(context.Background(), sampleRequest(2))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 42, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Desk lamp", page.Items[0].Name)
}

func TestHTTPSearchGatewayEmptyResultHasItems(t *testing.T) {
	gw := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ApiResponse{Message: "ok", Meta: models.NewPagination(1, 18, 0)})
	})

	page, err := gw.Search(context.Background(), sampleRequest(1))
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore())
}

func TestHTTPSearchGatewayClassifiesFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   discovery.ErrorKind
	}{
		{"bad request", http.StatusBadRequest, `{"message":"limit must be between 1 and 100","error":true}`, discovery.KindInvalidRequest},
		{"unprocessable", http.StatusUnprocessableEntity, `{}`, discovery.KindInvalidRequest},
		{"server", http.StatusInternalServerError, `{"message":"Failed to fetch products","error":true}`, discovery.KindServer},
		{"unavailable html", http.StatusServiceUnavailable, `<html>down</html>`, discovery.KindServer},
		{"rate limited", http.StatusTooManyRequests, `{"message":"Too many requests","error":true}`, discovery.KindServer},
		{"timeout", http.StatusRequestTimeout, ``, discovery.KindNetwork},
		{"malformed ok", http.StatusOK, `{"data":`, discovery.KindServer},
		{"missing meta", http.StatusOK, `{"message":"ok","data":[]}`, discovery.KindServer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := gw.Search(context.Background(), sampleRequest(1))
			require.Error(t, err)
			assert.Equal(t, tc.kind, discovery.KindOf(err))

			var ge *discovery.GatewayError
			require.ErrorAs(t, err, &ge)
		})
	}
}

func TestHTTPSearchGatewayUnreachableIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSearchGateway(url).Search(context.Background(), sampleRequest(1))
	require.Error(t, err)
	assert.True(t, discovery.IsNetwork(err))
}

func TestHTTPSearchGatewayHonoursContext(t *testing.T) {
	release := make(chan struct{})
	gw := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := gw.Search(ctx, sampleRequest(1))
	require.Error(t, err)
	assert.True(t, discovery.IsNetwork(err))
}

func TestHTTPSearchGatewayThrottleAbortsWithContext(t *testing.T) {
	gw := catalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ApiResponse{Meta: models.NewPagination(1, 18, 0)})
	})
	WithRateLimit(0.001, 1)(gw)

	_, err := gw.Search(context.Background(), sampleRequest(1))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = gw.Search(ctx, sampleRequest(1))
	require.Error(t, err)
	assert.True(t, discovery.IsNetwork(err))
}
