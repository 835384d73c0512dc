package discovery_routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Modeva-Ecommerce/modeva-discovery/controllers/discovery/session_controller"
	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/services"
)

func TestSetupDiscoveryRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := services.NewSessionRegistry(nil, discovery.EngineConfig{}, time.Minute, nil)
	defer registry.Close()

	var guarded int
	r := gin.New()
	SetupDiscoveryRoutes(r.Group("/api/v1"), session_controller.NewSessionController(registry, time.Second, nil),
		func(c *gin.Context) { guarded++; c.Next() })

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/discovery/sessions",
		"GET /api/v1/discovery/sessions/:id",
		"DELETE /api/v1/discovery/sessions/:id",
		"PUT /api/v1/discovery/sessions/:id/filters",
		"PUT /api/v1/discovery/sessions/:id/sort",
		"PUT /api/v1/discovery/sessions/:id/query",
		"PUT /api/v1/discovery/sessions/:id/url",
		"POST /api/v1/discovery/sessions/:id/sentinel",
		"POST /api/v1/discovery/sessions/:id/load-more",
		"POST /api/v1/discovery/sessions/:id/retry",
		"GET /api/v1/discovery/sessions/:id/events",
	} {
		assert.True(t, registered[want], want)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/discovery/sessions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, guarded)
}
