package product_controller

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

const (
	defaultLimit = 18
	maxLimit     = 100
)

// ─────────────────────────────────────────────────────────────
// Query parsing
// ─────────────────────────────────────────────────────────────

// catalogQuery is a validated GET /store/products request.
type catalogQuery struct {
	Q            string
	Categories   []string
	Brands       []string
	MinPrice     *float64
	MaxPrice     *float64
	Rating       int
	InStock      bool
	FreeShipping bool
	Country      string
	Sort         models.SortOrder
	Page         int
	Limit        int
}

func badQuery(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// parseCatalogQuery reads and validates the search parameters. Every error
// it returns is safe to show to the caller. Bad pagination is rejected
// rather than clamped.
func parseCatalogQuery(c *gin.Context) (catalogQuery, error) {
	q := catalogQuery{
		Q:          strings.TrimSpace(c.Query("q")),
		Categories: splitList(c.Query("category")),
		Brands:     splitList(c.Query("brand")),
		Country:    strings.ToUpper(strings.TrimSpace(c.Query("country"))),
	}

	var err error
	if q.Page, err = parseIntParam(c, "page", 1); err != nil {
		return q, err
	}
	if q.Page < 1 {
		return q, badQuery("page must be at least 1")
	}
	if q.Limit, err = parseIntParam(c, "limit", defaultLimit); err != nil {
		return q, err
	}
	if q.Limit < 1 || q.Limit > maxLimit {
		return q, badQuery("limit must be between 1 and %d", maxLimit)
	}

	if q.MinPrice, err = parsePriceParam(c, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = parsePriceParam(c, "maxPrice"); err != nil {
		return q, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return q, badQuery("minPrice must not exceed maxPrice")
	}

	if q.Rating, err = parseIntParam(c, "rating", 0); err != nil {
		return q, err
	}
	if q.Rating < 0 || q.Rating > models.MaxRating {
		return q, badQuery("rating must be between 0 and %d", models.MaxRating)
	}

	if q.InStock, err = parseBoolParam(c, "inStock"); err != nil {
		return q, err
	}
	if q.FreeShipping, err = parseBoolParam(c, "freeShipping"); err != nil {
		return q, err
	}

	q.Sort, _ = models.ParseSortOrder(c.Query("sort"))
	return q, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return models.NormalizeSet(strings.Split(raw, ","))
}

func parseIntParam(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badQuery("%s must be a whole number", name)
	}
	return n, nil
}

func parsePriceParam(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, badQuery("%s must be a non-negative number", name)
	}
	return &v, nil
}

func parseBoolParam(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badQuery("%s must be true or false", name)
	}
	return v, nil
}

// ─────────────────────────────────────────────────────────────
// SQL builders
// ─────────────────────────────────────────────────────────────

// buildCatalogWhere turns q into a WHERE clause over catalog_products p.
func buildCatalogWhere(q catalogQuery) (string, []any) {
	conditions := []string{"p.status = 'Active'"}
	args := []any{}

	if q.Q != "" {
		conditions = append(conditions, "(p.name ILIKE ? OR p.description ILIKE ?)")
		args = append(args, "%"+q.Q+"%", "%"+q.Q+"%")
	}
	if len(q.Categories) > 0 {
		conditions = append(conditions, lowerIn("p.category", len(q.Categories)))
		for _, name := range q.Categories {
			args = append(args, name)
		}
	}
	if len(q.Brands) > 0 {
		conditions = append(conditions, lowerIn("p.brand", len(q.Brands)))
		for _, name := range q.Brands {
			args = append(args, name)
		}
	}
	if q.MinPrice != nil {
		conditions = append(conditions, "p.price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		conditions = append(conditions, "p.price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.Rating > 0 {
		conditions = append(conditions, "p.rating >= ?")
		args = append(args, q.Rating)
	}
	if q.InStock {
		conditions = append(conditions, "p.stock > 0")
	}
	if q.FreeShipping {
		conditions = append(conditions, "p.free_shipping")
	}
	// Products without a country ship everywhere.
	if q.Country != "" {
		conditions = append(conditions, "(p.country = '' OR p.country = ?)")
		args = append(args, q.Country)
	}

	return strings.Join(conditions, " AND "), args
}

func lowerIn(column string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "LOWER(?)"
	}
	return fmt.Sprintf("LOWER(%s) IN (%s)", column, strings.Join(placeholders, ","))
}

// buildStorefrontOrderClause maps a sort order to ORDER BY. The trailing id
// keeps page boundaries stable between requests.
func buildStorefrontOrderClause(sort models.SortOrder) string {
	var order string
	switch sort {
	case models.SortNewest:
		order = "p.created_at DESC"
	case models.SortPriceAsc:
		order = "p.price ASC"
	case models.SortPriceDesc:
		order = "p.price DESC"
	case models.SortRating:
		order = "p.rating DESC"
	case models.SortPopular:
		order = "p.sales_count DESC"
	default:
		order = "p.views DESC"
	}
	return order + ", p.id ASC"
}

// ─────────────────────────────────────────────────────────────
// Database fetcher (THIN RESPONSE)
// ─────────────────────────────────────────────────────────────

func fetchStorefrontProductsFromDB(
	ctx context.Context,
	db *gorm.DB,
	whereClause string,
	orderClause string,
	args []any,
	page int,
	limit int,
) ([]models.StorefrontProduct, int, error) {
	offset := (page - 1) * limit

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM catalog_products p
		WHERE %s
	`, whereClause)

	var totalCount int64
	if err := db.WithContext(ctx).Raw(countQuery, args...).Scan(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	products := make([]models.StorefrontProduct, 0)
	if totalCount == 0 || offset >= int(totalCount) {
		return products, int(totalCount), nil
	}

	dataQuery := fmt.Sprintf(`
		SELECT
			p.id::text AS id,
			p.name,
			p.image,
			p.price::float8 AS price,
			p.rating::float8 AS rating,
			p.category,
			p.brand,
			(p.stock > 0) AS in_stock,
			p.free_shipping
		FROM catalog_products p
		WHERE %s
		ORDER BY %s
		LIMIT ? OFFSET ?
	`, whereClause, orderClause)

	dataArgs := append(append([]any{}, args...), limit, offset)
	if err := db.WithContext(ctx).Raw(dataQuery, dataArgs...).Scan(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, int(totalCount), nil
}
