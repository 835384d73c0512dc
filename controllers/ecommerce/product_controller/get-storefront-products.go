package product_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// GetStorefrontProducts godoc
// @Summary Search storefront products
// @Description Paginated catalog search with text, category, brand, price, rating, availability, shipping and country filters.
// @Tags store
// @Produce json
// @Param q query string false "Search text (name or description)"
// @Param category query string false "Comma separated category names"
// @Param brand query string false "Comma separated brand names"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param rating query int false "Minimum rating (1-5)"
// @Param inStock query bool false "Only products in stock"
// @Param freeShipping query bool false "Only products with free shipping"
// @Param country query string false "ISO country code"
// @Param sort query string false "Sort order" Enums(trending, newest, price_asc, price_desc, rating, popular) default(trending)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(18)
// @Success 200 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Failure 500 {object} models.ApiResponse
// @Router /store/products [get]
func GetStorefrontProducts(c *gin.Context) {
	query, err := parseCatalogQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.KindedErrorResponse(c, string(discovery.KindInvalidRequest), err.Error()))
		return
	}

	whereClause, args := buildCatalogWhere(query)
	orderClause := buildStorefrontOrderClause(query.Sort)

	ctx, cancel := config.WithTimeout()
	defer cancel()

	products, totalCount, err := fetchStorefrontProductsFromDB(
		ctx,
		config.CatalogGorm,
		whereClause,
		orderClause,
		args,
		query.Page,
		query.Limit,
	)
	if err != nil {
		config.Logger.Error("catalog search failed", zap.Error(err), zap.String("where", whereClause))
		c.JSON(http.StatusInternalServerError, models.KindedErrorResponse(c, string(discovery.KindServer), "Failed to fetch products"))
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse(
		c,
		"Products fetched successfully",
		products,
		models.NewPagination(query.Page, query.Limit, totalCount),
	))
}
