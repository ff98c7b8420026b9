package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/promosink/apparel/internal/domain"
)

// CartUC owns the mapping from a buyer's cart to priced, decorated lines.
// Mutation is serialized per cart; line totals are recomputed idempotently.
type CartUC struct {
	Carts    domain.CartRepo
	Products domain.ProductRepo
	Pricing  *PricingUC

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (uc *CartUC) cartLock(cartID uuid.UUID) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.locks == nil {
		uc.locks = map[uuid.UUID]*sync.Mutex{}
	}
	l, ok := uc.locks[cartID]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[cartID] = l
	}
	return l
}

func (uc *CartUC) GetCart(ctx context.Context, buyerID uuid.UUID) (*domain.Cart, error) {
	return uc.Carts.FindOrCreateByBuyer(ctx, buyerID)
}

func (uc *CartUC) AddLine(ctx context.Context, buyerID, variantID uuid.UUID, qty int) (*domain.CartLine, error) {
	if qty < 1 {
		return nil, errors.New("quantity must be at least 1")
	}
	p, v, err := uc.Products.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	cart, err := uc.Carts.FindOrCreateByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	l := uc.cartLock(cart.ID)
	l.Lock()
	defer l.Unlock()

	line := &domain.CartLine{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: p.ID,
		VariantID: v.ID,
		Title:     p.Name,
		Color:     v.Color,
		Size:      v.Size,
		Qty:       qty,
		UnitPrice: p.BasePrice,
	}
	if err := uc.Carts.AddLine(ctx, line); err != nil {
		return nil, fmt.Errorf("%w: add cart line: %v", domain.ErrUnavailable, err)
	}
	return line, nil
}

// AttachDecoration validates the configuration, resolves its price from the
// first location's dimensions, and caches the result on the line until the
// decoration is replaced. A pricing gap fails the attach outright rather
// than parking a zero-priced decoration in the cart.
func (uc *CartUC) AttachDecoration(ctx context.Context, buyerID uuid.UUID, customerAccountID *uuid.UUID, lineID uuid.UUID, cfg domain.DecorationConfig) (*domain.CartLine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIncompleteConfiguration, err)
	}
	line, cart, err := uc.Carts.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if cart.BuyerID != buyerID {
		return nil, domain.ErrNotFound
	}
	l := uc.cartLock(cart.ID)
	l.Lock()
	defer l.Unlock()

	colorCount, stitchCount := cfg.PricingDims()
	quote, err := uc.Pricing.Resolve(ctx, domain.DecorationRequest{
		Method:            cfg.Method,
		Quantity:          line.Qty,
		ColorCount:        colorCount,
		StitchCount:       stitchCount,
		CustomerAccountID: customerAccountID,
	})
	if err != nil {
		return nil, err
	}

	line.Decoration = &cfg
	line.DecorationUnitPrice = quote.UnitPrice
	line.SetupCharge = quote.SetupCharge
	if err := uc.Carts.SaveLine(ctx, line); err != nil {
		return nil, fmt.Errorf("%w: save cart line: %v", domain.ErrUnavailable, err)
	}
	return line, nil
}

func (uc *CartUC) RemoveLine(ctx context.Context, buyerID, lineID uuid.UUID) error {
	_, cart, err := uc.Carts.FindLine(ctx, lineID)
	if err != nil {
		return err
	}
	if cart.BuyerID != buyerID {
		return domain.ErrNotFound
	}
	l := uc.cartLock(cart.ID)
	l.Lock()
	defer l.Unlock()
	return uc.Carts.RemoveLine(ctx, lineID)
}

// ComputeCartTotal sums (base + decoration) * qty + setup across lines.
// Setup charges are per line, not per location and not per order.
func (uc *CartUC) ComputeCartTotal(cart *domain.Cart) float64 {
	if cart == nil {
		return 0
	}
	return cart.Total()
}
