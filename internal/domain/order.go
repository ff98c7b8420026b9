package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusReceived     OrderStatus = "received"
	OrderStatusProofing     OrderStatus = "proofing"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderNumber       string      `gorm:"size:40;uniqueIndex;not null"`
	CustomerAccountID uuid.UUID   `gorm:"type:uuid;index"`
	BuyerID           uuid.UUID   `gorm:"type:uuid;index"`
	Status            OrderStatus `gorm:"type:varchar(30);index"`
	Lines             []OrderLine

	PONumber       string `gorm:"size:60"`
	ShipToName     string `gorm:"size:140"`
	ShipToAddress1 string `gorm:"size:255"`
	ShipToAddress2 string `gorm:"size:255"`
	ShipToCity     string `gorm:"size:100"`
	ShipToState    string `gorm:"size:40"`
	ShipToZip      string `gorm:"size:20"`
	ShipToCountry  string `gorm:"size:2"`
	InHandsDate    *time.Time
	Notes          string  `gorm:"type:text"`
	ShippingMethod string  `gorm:"size:60"`
	ShippingCost   float64 `gorm:"type:decimal(12,2);default:0"`

	// ExternalID is assigned by the fulfillment API after a successful
	// submission. Empty means the order still awaits an external sync.
	ExternalID string `gorm:"size:80;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;index"`
	VariantID   uuid.UUID `gorm:"type:uuid;index"`
	Title       string    `gorm:"size:180"`
	Color       string    `gorm:"size:60"`
	Size        string    `gorm:"size:20"`
	Qty         int       `gorm:"not null"`
	UnitPrice   float64   `gorm:"type:decimal(12,2)"`
	Decorations []OrderDecoration
}

// OrderDecoration is the decoration portion of an order line, one row per
// physical location for production routing. UnitPrice and SetupCharge are
// the submission-time snapshot shared with sibling locations of the same
// line; they are never recomputed from the rate card.
type OrderDecoration struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID          `gorm:"type:uuid;index"`
	OrderLineID uuid.UUID          `gorm:"type:uuid;index"`
	Method      DecorationMethod   `gorm:"type:varchar(10);not null"`
	Location    DecorationLocation `gorm:"type:jsonb;serializer:json"`
	Qty         int                `gorm:"not null"`
	UnitPrice   float64            `gorm:"type:decimal(12,2)"`
	SetupCharge float64            `gorm:"type:decimal(12,2);default:0"`
	Assets      []ArtworkAsset
	Proofs      []Proof
	CreatedAt   time.Time
}

type OrderRepo interface {
	// Create persists the order with its lines and decorations atomically.
	Create(ctx context.Context, o *Order) error
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	SetExternalID(ctx context.Context, orderID uuid.UUID, externalID string) error
	// FindDecoration returns the decoration together with its owning order.
	FindDecoration(ctx context.Context, decorationID uuid.UUID) (*OrderDecoration, *Order, error)
}
