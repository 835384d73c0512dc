package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Modeva-Ecommerce/modeva-discovery/cache"
	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// init loads environment variables
func init() {
	_ = godotenv.Load()
}

// catalogNamespace keeps seeded product IDs stable across runs.
var catalogNamespace = uuid.MustParse("6f1c2a3e-8d4b-4c5e-9a7f-0b1d2e3f4a5b")

var seedCategories = map[string][]string{
	"Electronics": {"Headphones", "Speaker", "Charger", "Smartwatch", "Keyboard"},
	"Lighting":    {"Desk lamp", "Floor lamp", "LED strip", "Pendant light"},
	"Home":        {"Throw pillow", "Vase", "Wall clock", "Storage basket"},
	"Footwear":    {"Running shoes", "Sneakers", "Sandals", "Boots"},
	"Apparel":     {"T-shirt", "Hoodie", "Denim jacket", "Chinos"},
}

var seedBrands = []string{"Lumo", "Northwind", "Kora", "Atlas", "Vela", "Modeva"}

var seedCountries = []string{"", "", "NG", "GH", "KE", "US", "GB"}

func main() {
	var (
		count      int
		seed       int64
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the catalog table and fill it with a demo catalog",
		Long: `seed migrates catalog_products and upserts a deterministic demo catalog.
Running it twice with the same --seed and --count leaves the same rows.

Usage: go run ./cmd/seed --count 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.InitLogger()
			defer config.SyncLogger()

			config.InitDB()
			defer config.CloseDB()

			if err := config.CatalogGorm.AutoMigrate(&models.CatalogProduct{}); err != nil {
				return fmt.Errorf("migrate catalog: %w", err)
			}
			logger.Info("catalog table migrated")

			products := demoCatalog(count, seed, time.Now().UTC())
			if err := upsertProducts(config.CatalogGorm, products); err != nil {
				return err
			}
			logger.Info("catalog seeded", zap.Int("products", len(products)))

			if clearCache {
				config.ConnectRedis()
				defer config.CloseRedis()
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				cache.NewRedisPageCache(config.RedisClient, cache.TTL, logger).Invalidate(ctx)
				logger.Info("cached discovery pages cleared")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 240, "number of products to seed")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for the demo catalog")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "drop cached discovery pages from Redis afterwards")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// demoCatalog builds count products from seed. now anchors created_at so
// the newest sort has a spread to work with.
func demoCatalog(count int, seed int64, now time.Time) []models.CatalogProduct {
	rng := rand.New(rand.NewSource(seed))
	categories := make([]string, 0, len(seedCategories))
	for name := range seedCategories {
		categories = append(categories, name)
	}
	slices.Sort(categories)

	products := make([]models.CatalogProduct, 0, count)
	for i := 0; i < count; i++ {
		category := categories[rng.Intn(len(categories))]
		kinds := seedCategories[category]
		kind := kinds[rng.Intn(len(kinds))]
		brand := seedBrands[rng.Intn(len(seedBrands))]

		stock := rng.Intn(40)
		if rng.Intn(5) == 0 {
			stock = 0
		}

		products = append(products, models.CatalogProduct{
			ID:           uuid.NewSHA1(catalogNamespace, []byte(fmt.Sprintf("product-%d", i))),
			Name:         fmt.Sprintf("%s %s %d", brand, kind, i+1),
			Description:  fmt.Sprintf("%s by %s, part of our %s range.", kind, brand, category),
			Image:        fmt.Sprintf("https://picsum.photos/seed/modeva-%d/600/600", i+1),
			Price:        math.Round((5+rng.Float64()*495)*100) / 100,
			Category:     category,
			Brand:        brand,
			Rating:       math.Round((1+rng.Float64()*4)*10) / 10,
			Stock:        stock,
			FreeShipping: rng.Intn(3) == 0,
			Country:      seedCountries[rng.Intn(len(seedCountries))],
			Status:       "Active",
			Views:        rng.Intn(5000),
			SalesCount:   rng.Intn(800),
			CreatedAt:    now.Add(-time.Duration(rng.Intn(180*24)) * time.Hour),
		})
	}
	return products
}

func upsertProducts(db *gorm.DB, products []models.CatalogProduct) error {
	ctx, cancel := config.WithCustomTimeout(time.Minute)
	defer cancel()

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(products, 100).Error
	if err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}
