package ecommerce_routes

import (
	"github.com/gin-gonic/gin"

	store_filter "github.com/Modeva-Ecommerce/modeva-discovery/controllers/ecommerce/filter_controller"
	store_product "github.com/Modeva-Ecommerce/modeva-discovery/controllers/ecommerce/product_controller"
)

func SetupStorefrontRoutes(router *gin.RouterGroup) {
	// Storefront routes (public, no auth required)
	store := router.Group("/store")

	products := store.Group("/products")
	{
		products.GET("", store_product.GetStorefrontProducts)        // Catalog search
		products.GET("/:id", store_product.GetStorefrontProductByID) // Single product
	}

	store.GET("/filters/metadata", store_filter.GetFilterMetadata)
}
