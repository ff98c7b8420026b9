package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is one garment variant in a buyer's cart. The decoration fields
// are a cached pricing result, refreshed whenever the decoration is
// attached or replaced and frozen onto the order at submission.
type CartLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	VariantID uuid.UUID `gorm:"type:uuid;index"`
	Title     string    `gorm:"size:180"`
	Color     string    `gorm:"size:60"`
	Size      string    `gorm:"size:20"`
	Qty       int       `gorm:"not null"`
	UnitPrice float64   `gorm:"type:decimal(12,2)"`

	Decoration          *DecorationConfig `gorm:"type:jsonb;serializer:json"`
	DecorationUnitPrice float64           `gorm:"type:decimal(12,2);default:0"`
	SetupCharge         float64           `gorm:"type:decimal(12,2);default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal is (base + decoration unit price) * qty plus the one-time
// per-line setup charge.
func (l CartLine) Subtotal() float64 {
	return (l.UnitPrice+l.DecorationUnitPrice)*float64(l.Qty) + l.SetupCharge
}

func (c Cart) Total() float64 {
	total := 0.0
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

type CartRepo interface {
	FindOrCreateByBuyer(ctx context.Context, buyerID uuid.UUID) (*Cart, error)
	// FindLine returns the line together with its owning cart.
	FindLine(ctx context.Context, lineID uuid.UUID) (*CartLine, *Cart, error)
	AddLine(ctx context.Context, line *CartLine) error
	SaveLine(ctx context.Context, line *CartLine) error
	RemoveLine(ctx context.Context, lineID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}
