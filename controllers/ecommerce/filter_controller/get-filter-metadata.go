package filter_controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// GetFilterMetadata godoc
// @Summary Get all filter metadata
// @Description Returns availability counts, categories, brands and price range for storefront filters
// @Tags store
// @Produce json
// @Success 200 {object} models.ApiResponse{data=models.FilterMetadata}
// @Failure 500 {object} models.ApiResponse
// @Router /store/filters/metadata [get]
func GetFilterMetadata(c *gin.Context) {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	metadata, err := loadFilterMetadata(ctx, config.CatalogGorm)
	if err != nil {
		config.Logger.Error("failed to load filter metadata", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(c, "Failed to fetch filter metadata"))
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse(c, "Filter metadata fetched", metadata))
}

// loadFilterMetadata runs the facet queries concurrently. Each goroutine
// owns one field of the result, so no locking is needed.
func loadFilterMetadata(ctx context.Context, db *gorm.DB) (*models.FilterMetadata, error) {
	metadata := &models.FilterMetadata{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		availability, err := getAvailabilityCounts(ctx, db)
		metadata.Availability = availability
		return err
	})
	g.Go(func() error {
		categories, err := getDistinctColumn(ctx, db, "category")
		metadata.Categories = categories
		return err
	})
	g.Go(func() error {
		brands, err := getDistinctColumn(ctx, db, "brand")
		metadata.Brands = brands
		return err
	})
	g.Go(func() error {
		priceRange, err := getPriceRange(ctx, db)
		metadata.PriceRange = priceRange
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return metadata, nil
}

func getAvailabilityCounts(ctx context.Context, db *gorm.DB) (*models.AvailabilityData, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE stock > 0)::int AS in_stock,
			COUNT(*) FILTER (WHERE stock <= 0)::int AS out_of_stock
		FROM catalog_products
		WHERE status = 'Active'
	`

	var data models.AvailabilityData
	if err := db.WithContext(ctx).Raw(query).Scan(&data).Error; err != nil {
		return nil, err
	}
	return &data, nil
}

// getDistinctColumn lists the non-empty values of column across active
// products. column is never user input.
func getDistinctColumn(ctx context.Context, db *gorm.DB, column string) ([]string, error) {
	values := make([]string, 0)
	err := db.WithContext(ctx).
		Model(&models.CatalogProduct{}).
		Where("status = ? AND "+column+" <> ''", "Active").
		Distinct(column).
		Order(column+" ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func getPriceRange(ctx context.Context, db *gorm.DB) (*models.PriceRange, error) {
	query := `
		SELECT
			COALESCE(MIN(price), 0)::float8 AS min,
			COALESCE(MAX(price), 1000)::float8 AS max
		FROM catalog_products
		WHERE status = 'Active'
			AND price > 0
	`

	var priceRange models.PriceRange
	if err := db.WithContext(ctx).Raw(query).Scan(&priceRange).Error; err != nil {
		return nil, err
	}
	return &priceRange, nil
}
