package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a blank garment style from the supplier catalog.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StyleCode string    `gorm:"size:60;uniqueIndex"`
	Name      string    `gorm:"size:180"`
	Brand     string    `gorm:"size:100"`
	Category  string    `gorm:"size:100"`
	Fabric    string    `gorm:"size:140"`
	BasePrice float64   `gorm:"type:decimal(12,2)"`
	Variants  []Variant
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Variant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"type:uuid;index"`
	Color       string    `gorm:"size:60"`
	Size        string    `gorm:"size:20"`
	SupplierSKU string    `gorm:"size:120;index"`
	WeightOz    float64   `gorm:"type:decimal(8,2);default:0"`
	CreatedAt   time.Time
}

type ProductRepo interface {
	FindVariant(ctx context.Context, variantID uuid.UUID) (*Product, *Variant, error)
	Save(ctx context.Context, p *Product) error
}
