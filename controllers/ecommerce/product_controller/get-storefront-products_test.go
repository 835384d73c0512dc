package product_controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm/logger"

	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func mockCatalog(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := config.OpenCatalog(postgres.New(postgres.Config{Conn: sqlDB}), logger.Discard)
	require.NoError(t, err)

	prev := config.CatalogGorm
	config.CatalogGorm = db
	t.Cleanup(func() {
		config.CatalogGorm = prev
		sqlDB.Close()
	})
	return mock
}

func search(t *testing.T, rawQuery string) (*httptest.ResponseRecorder, models.ApiResponse) {
	t.Helper()
	r := gin.New()
	r.GET("/api/v1/store/products", GetStorefrontProducts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/store/products?"+rawQuery, nil)
	r.ServeHTTP(w, req)

	var resp models.ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func queryFor(t *testing.T, rawQuery string) (catalogQuery, error) {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/store/products?"+rawQuery, nil)
	return parseCatalogQuery(c)
}

func TestParseCatalogQueryDefaults(t *testing.T) {
	q, err := queryFor(t, "")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 18, q.Limit)
	assert.Equal(t, models.SortTrending, q.Sort)
	assert.Nil(t, q.MinPrice)
	assert.Nil(t, q.Categories)
}

func TestParseCatalogQueryReadsEveryParameter(t *testing.T) {
	q, err := queryFor(t, "q=desk+lamp&category=Lighting,home,lighting&brand=Lumo&minPrice=10&maxPrice=99.5"+
		"&rating=4&inStock=true&freeShipping=true&country=ng&sort=price_asc&page=3&limit=24")
	require.NoError(t, err)

	assert.Equal(t, "desk lamp", q.Q)
	assert.Equal(t, []string{"home", "lighting"}, q.Categories)
	assert.Equal(t, []string{"lumo"}, q.Brands)
	require.NotNil(t, q.MinPrice)
	require.NotNil(t, q.MaxPrice)
	assert.Equal(t, 10.0, *q.MinPrice)
	assert.Equal(t, 99.5, *q.MaxPrice)
	assert.Equal(t, 4, q.Rating)
	assert.True(t, q.InStock)
	assert.True(t, q.FreeShipping)
	assert.Equal(t, "NG", q.Country)
	assert.Equal(t, models.SortPriceAsc, q.Sort)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 24, q.Limit)
}

func TestParseCatalogQueryUnknownSortFallsBack(t *testing.T) {
	q, err := queryFor(t, "sort=cheapest")
	require.NoError(t, err)
	assert.Equal(t, models.SortTrending, q.Sort)
}

func TestParseCatalogQueryRejectsInvalidInput(t *testing.T) {
	for _, raw := range []string{
		"page=0",
		"page=two",
		"limit=0",
		"limit=101",
		"minPrice=-1",
		"maxPrice=abc",
		"minPrice=NaN",
		"minPrice=80&maxPrice=20",
		"rating=6",
		"rating=3.5",
		"inStock=maybe",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := queryFor(t, raw)
			assert.Error(t, err)
		})
	}
}

func TestBuildCatalogWhere(t *testing.T) {
	lo, hi := 10.0, 50.0
	where, args := buildCatalogWhere(catalogQuery{
		Q:            "lamp",
		Categories:   []string{"Home", "Lighting"},
		Brands:       []string{"Lumo"},
		MinPrice:     &lo,
		MaxPrice:     &hi,
		Rating:       4,
		InStock:      true,
		FreeShipping: true,
		Country:      "NG",
	})

	assert.Equal(t, "p.status = 'Active'"+
		" AND (p.name ILIKE ? OR p.description ILIKE ?)"+
		" AND LOWER(p.category) IN (LOWER(?),LOWER(?))"+
		" AND LOWER(p.brand) IN (LOWER(?))"+
		" AND p.price >= ? AND p.price <= ?"+
		" AND p.rating >= ?"+
		" AND p.stock > 0"+
		" AND p.free_shipping"+
		" AND (p.country = '' OR p.country = ?)", where)
	assert.Equal(t, []any{"%lamp%", "%lamp%", "Home", "Lighting", "Lumo", 10.0, 50.0, 4, "NG"}, args)
}

func TestBuildCatalogWhereUnconstrained(t *testing.T) {
	where, args := buildCatalogWhere(catalogQuery{})
	assert.Equal(t, "p.status = 'Active'", where)
	assert.Empty(t, args)
}

func TestBuildStorefrontOrderClause(t *testing.T) {
	cases := map[models.SortOrder]string{
		models.SortTrending:  "p.views DESC, p.id ASC",
		models.SortNewest:    "p.created_at DESC, p.id ASC",
		models.SortPriceAsc:  "p.price ASC, p.id ASC",
		models.SortPriceDesc: "p.price DESC, p.id ASC",
		models.SortRating:    "p.rating DESC, p.id ASC",
		models.SortPopular:   "p.sales_count DESC, p.id ASC",
		"":                   "p.views DESC, p.id ASC",
	}
	for sort, want := range cases {
		assert.Equal(t, want, buildStorefrontOrderClause(sort), "sort %q", sort)
	}
}

func TestGetStorefrontProductsReturnsPage(t *testing.T) {
	mock := mockCatalog(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM catalog_products p\s+WHERE p.status = 'Active' AND \(p.name ILIKE \$1 OR p.description ILIKE \$2\) AND LOWER\(p.category\) IN \(LOWER\(\$3\)\) AND p.price >= \$4`).
		WithArgs("%lamp%", "%lamp%", "lighting", 50.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))
	mock.ExpectQuery(`SELECT\s+p.id::text AS id.*FROM catalog_products p.*ORDER BY p.created_at DESC, p.id ASC\s+LIMIT \$5 OFFSET \$6`).
		WithArgs("%lamp%", "%lamp%", "lighting", 50.0, 18, 18).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "price", "rating", "category", "brand", "in_stock", "free_shipping"}).
			AddRow("p-19", "Desk lamp", "", 55.0, 4.5, "Lighting", "Lumo", true, false).
			AddRow("p-20", "Floor lamp", "", 120.0, 4.0, "Lighting", "Lumo", false, true))

	w, resp := search(t, "q=lamp&category=Lighting&minPrice=50&sort=newest&page=2&limit=18")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 23, resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	items, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Desk lamp", first["name"])
	assert.Equal(t, true, first["in_stock"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStorefrontProductsPastTheEndSkipsDataQuery(t *testing.T) {
	mock := mockCatalog(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	w, resp := search(t, "page=4")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)
	assert.Equal(t, 1, resp.Meta.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStorefrontProductsRejectsBadPagination(t *testing.T) {
	w, resp := search(t, "limit=500")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, resp.Error)
	assert.Equal(t, "invalid_request", resp.ErrorKind)
	assert.Contains(t, resp.Message, "limit")
}

func TestGetStorefrontProductsDatabaseFailure(t *testing.T) {
	mock := mockCatalog(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnError(errors.New("connection reset"))

	w, resp := search(t, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "server_error", resp.ErrorKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
