package discovery_routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Modeva-Ecommerce/modeva-discovery/controllers/discovery/session_controller"
)

// SetupDiscoveryRoutes mounts the discovery session API. Extra handlers
// (rate limiting) run before every session route.
func SetupDiscoveryRoutes(router *gin.RouterGroup, sessions *session_controller.SessionController, handlers ...gin.HandlerFunc) {
	group := router.Group("/discovery/sessions", handlers...)
	{
		group.POST("", sessions.Create)
		group.GET("/:id", sessions.Get)
		group.DELETE("/:id", sessions.Delete)

		group.PUT("/:id/filters", sessions.UpdateFilters)
		group.PUT("/:id/sort", sessions.UpdateSort)
		group.PUT("/:id/query", sessions.UpdateQuery)
		group.PUT("/:id/url", sessions.UpdateURL)

		group.POST("/:id/sentinel", sessions.Sentinel)
		group.POST("/:id/load-more", sessions.LoadMore)
		group.POST("/:id/retry", sessions.Retry)

		group.GET("/:id/events", sessions.Events)
	}
}
