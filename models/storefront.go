// ════════════════════════════════════════════════════════════
// STOREFRONT MODELS
// File: models/storefront.go
// ════════════════════════════════════════════════════════════

package models

import (
	"time"

	"github.com/google/uuid"
)

// StorefrontProduct is the thin card shape returned by catalog search.
type StorefrontProduct struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	Rating       float64 `json:"rating"`
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	InStock      bool    `json:"in_stock"`
	FreeShipping bool    `json:"free_shipping"`
}

// CatalogProduct is the catalog table backing the storefront search.
type CatalogProduct struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"not null;index"`
	Description  string    `json:"description" gorm:"not null;default:''"`
	Image        string    `json:"image" gorm:"not null;default:''"`
	Price        float64   `json:"price" gorm:"type:numeric(12,2);not null;check:price >= 0;index"`
	Category     string    `json:"category" gorm:"not null;index"`
	Brand        string    `json:"brand" gorm:"not null;default:'';index"`
	Rating       float64   `json:"rating" gorm:"type:numeric(2,1);not null;default:0"`
	Stock        int       `json:"stock" gorm:"not null;default:0"`
	FreeShipping bool      `json:"free_shipping" gorm:"not null;default:false"`
	Country      string    `json:"country" gorm:"size:2;not null;default:'';index"`
	Status       string    `json:"status" gorm:"not null;default:'Active';check:status IN ('Active', 'Draft');index"`
	Views        int       `json:"views" gorm:"not null;default:0;index:idx_catalog_products_views,sort:desc"`
	SalesCount   int       `json:"sales_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CatalogProduct) TableName() string {
	return "catalog_products"
}
