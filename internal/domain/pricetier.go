package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PriceTier is one row of a decoration rate card: a quantity band (and
// optionally a color or stitch complexity bound) for one method, scoped to
// a customer account or global when CustomerAccountID is nil.
type PriceTier struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Method            DecorationMethod `gorm:"type:varchar(10);index;not null"`
	CustomerAccountID *uuid.UUID       `gorm:"type:uuid;index"`
	MinQty            int              `gorm:"not null"`
	MaxQty            *int
	MaxColors         *int
	MaxStitches       *int
	PricePerUnit      float64 `gorm:"type:decimal(12,2)"`
	SetupCharge       float64 `gorm:"type:decimal(12,2);default:0"`
	CreatedAt         time.Time
}

// DecorationRequest carries the pricing dimensions of one decorated line.
// ColorCount is meaningful only for SCREEN, StitchCount only for EMB; nil
// means the dimension is unknown and only unbounded tiers may match it.
type DecorationRequest struct {
	Method            DecorationMethod
	Quantity          int
	ColorCount        *int
	StitchCount       *int
	CustomerAccountID *uuid.UUID
}

type PriceQuote struct {
	UnitPrice   float64 `json:"unit_price"`
	SetupCharge float64 `json:"setup_charge"`
	TotalPrice  float64 `json:"total_price"`
}

// Matches reports whether the tier applies to the request. Complexity
// bounds are only enforced when the request supplies the dimension.
func (t PriceTier) Matches(req DecorationRequest) bool {
	if t.Method != req.Method {
		return false
	}
	if t.CustomerAccountID != nil {
		if req.CustomerAccountID == nil || *t.CustomerAccountID != *req.CustomerAccountID {
			return false
		}
	}
	if req.Quantity < t.MinQty {
		return false
	}
	if t.MaxQty != nil && req.Quantity > *t.MaxQty {
		return false
	}
	if req.Method == MethodScreen && req.ColorCount != nil {
		if t.MaxColors != nil && *req.ColorCount > *t.MaxColors {
			return false
		}
	}
	if req.Method == MethodEmbroidery && req.StitchCount != nil {
		if t.MaxStitches != nil && *req.StitchCount > *t.MaxStitches {
			return false
		}
	}
	return true
}

// ValidateTiers enforces the data-entry contract on a full rate card:
// sane ranges, non-negative money, and pairwise-distinct MinQty within one
// (method, customer-scope). Duplicate MinQty would make tier selection
// depend on incidental row order, so it is rejected at load time.
func ValidateTiers(tiers []PriceTier) error {
	seen := map[string]struct{}{}
	for i, t := range tiers {
		if !t.Method.Valid() {
			return fmt.Errorf("tier %d: unknown method %q", i, t.Method)
		}
		if t.MinQty < 1 {
			return fmt.Errorf("tier %d: min qty must be >= 1, got %d", i, t.MinQty)
		}
		if t.MaxQty != nil && *t.MaxQty < t.MinQty {
			return fmt.Errorf("tier %d: max qty %d below min qty %d", i, *t.MaxQty, t.MinQty)
		}
		if t.PricePerUnit < 0 || t.SetupCharge < 0 {
			return fmt.Errorf("tier %d: negative money value", i)
		}
		scope := "global"
		if t.CustomerAccountID != nil {
			scope = t.CustomerAccountID.String()
		}
		key := fmt.Sprintf("%s|%s|%d", t.Method, scope, t.MinQty)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("tier %d: duplicate min qty %d for %s/%s", i, t.MinQty, t.Method, scope)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// PriceTierRepo is the read path of the rate-card store. Tier authoring is
// out of scope; ReplaceAll exists only for fixture loading.
type PriceTierRepo interface {
	// ForMethod returns the customer's own tiers plus global tiers for the
	// method. A nil customerAccountID returns global tiers only.
	ForMethod(ctx context.Context, method DecorationMethod, customerAccountID *uuid.UUID) ([]PriceTier, error)
	ReplaceAll(ctx context.Context, tiers []PriceTier) error
	Count(ctx context.Context) (int64, error)
}
