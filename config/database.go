package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var CatalogGorm *gorm.DB

// InitDB opens the catalog database. It exits the process when the
// database is unreachable, like every other startup dependency.
func InitDB() {
	gormLogger := logger.Default.LogMode(logger.Info)
	if os.Getenv("APP_ENV") == "production" {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dsn := os.Getenv("CATALOG_DB_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "modeva_catalog"),
			getEnv("DB_PORT", "5432"),
		)
		Logger.Warn("CATALOG_DB_URL not set, using local default")
	}

	db, err := OpenCatalog(postgres.Open(dsn), gormLogger)
	if err != nil {
		Logger.Fatal("failed to connect to catalog database", zap.Error(err))
	}
	CatalogGorm = db
	Logger.Info("catalog database connected")
}

// OpenCatalog opens a gorm handle on dialector with the pool settings used
// in every environment.
func OpenCatalog(dialector gorm.Dialector, gormLogger logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	}
	return db, nil
}

func CloseDB() {
	if CatalogGorm == nil {
		return
	}
	if sqlDB, _ := CatalogGorm.DB(); sqlDB != nil {
		sqlDB.Close()
		Logger.Info("catalog database connection closed")
	}
}

// WithTimeout returns a context with a 10s timeout (bumped from 5s for Neon cold starts)
func WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func WithCustomTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
