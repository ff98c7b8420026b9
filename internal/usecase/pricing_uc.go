package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/promosink/apparel/internal/domain"
)

// PricingUC resolves the single applicable rate-card tier for a decoration
// request. The result is advisory; the settled price is locked in at order
// submission.
type PricingUC struct {
	Tiers domain.PriceTierRepo
}

func (uc *PricingUC) Resolve(ctx context.Context, req domain.DecorationRequest) (domain.PriceQuote, error) {
	if !req.Method.Valid() {
		return domain.PriceQuote{}, fmt.Errorf("unknown decoration method %q", req.Method)
	}
	if req.Quantity < 1 {
		return domain.PriceQuote{}, errors.New("quantity must be at least 1")
	}

	tiers, err := uc.Tiers.ForMethod(ctx, req.Method, req.CustomerAccountID)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: load tiers: %v", domain.ErrUnavailable, err)
	}

	// Customer-scoped tiers outrank global ones regardless of other fields;
	// within one scope the highest MinQty wins. MinQty values are distinct
	// per (method, scope) by the data-entry contract, so the order is total.
	var best *domain.PriceTier
	for i := range tiers {
		t := tiers[i]
		if !t.Matches(req) {
			continue
		}
		if best == nil || tierRank(t) > tierRank(*best) ||
			(tierRank(t) == tierRank(*best) && t.MinQty > best.MinQty) {
			best = &tiers[i]
		}
	}
	if best == nil {
		return domain.PriceQuote{}, domain.ErrNoPricingDefined
	}

	return domain.PriceQuote{
		UnitPrice:   best.PricePerUnit,
		SetupCharge: best.SetupCharge,
		TotalPrice:  best.PricePerUnit*float64(req.Quantity) + best.SetupCharge,
	}, nil
}

func tierRank(t domain.PriceTier) int {
	if t.CustomerAccountID != nil {
		return 1
	}
	return 0
}
