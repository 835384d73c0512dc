package product_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// GetStorefrontProductByID godoc
// @Summary Get single product details for storefront
// @Description Get full catalog product by ID
// @Tags store
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 500 {object} models.ApiResponse
// @Router /store/products/{id} [get]
func GetStorefrontProductByID(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(c, "Invalid product ID"))
		return
	}

	ctx, cancel := config.WithTimeout()
	defer cancel()

	var product models.CatalogProduct
	err = config.CatalogGorm.WithContext(ctx).
		Where("id = ? AND status = ?", productID, "Active").
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse(c, "Product not found"))
		return
	}
	if err != nil {
		config.Logger.Error("failed to load product", zap.Error(err), zap.String("product_id", productID.String()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(c, "Failed to fetch product"))
		return
	}

	// Views drive the trending sort.
	go incrementProductViews(productID)

	c.JSON(http.StatusOK, models.SuccessResponse(c, "Product fetched successfully", product))
}

func incrementProductViews(productID uuid.UUID) {
	ctx, cancel := config.WithTimeout()
	defer cancel()

	err := config.CatalogGorm.WithContext(ctx).
		Model(&models.CatalogProduct{}).
		Where("id = ?", productID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	if err != nil {
		config.Logger.Warn("failed to record product view", zap.Error(err))
	}
}
