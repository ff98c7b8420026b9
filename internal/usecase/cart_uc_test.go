package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosink/apparel/internal/adapters/repo/memory"
	"github.com/promosink/apparel/internal/domain"
	"github.com/promosink/apparel/internal/usecase"
)

func seedCatalog(t *testing.T, store *memory.Store) uuid.UUID {
	t.Helper()
	p := &domain.Product{
		ID:        uuid.New(),
		StyleCode: "PC61",
		Name:      "Essential Tee",
		BasePrice: 4.25,
		Variants:  []domain.Variant{{Color: "Black", Size: "M", WeightOz: 6.1}},
	}
	require.NoError(t, store.Products().Save(context.Background(), p))
	return p.Variants[0].ID
}

func newCartUC(store *memory.Store) *usecase.CartUC {
	return &usecase.CartUC{
		Carts:    store.Carts(),
		Products: store.Products(),
		Pricing:  &usecase.PricingUC{Tiers: store.Tiers()},
	}
}

func screenConfig(colors int) domain.DecorationConfig {
	return domain.DecorationConfig{
		Method: domain.MethodScreen,
		Locations: []domain.DecorationLocation{
			{Placement: domain.PlacementLeftChest, Params: domain.ScreenParams{NumberOfColors: colors}},
		},
	}
}

func TestAddLinePricesFromCatalog(t *testing.T) {
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	uc := newCartUC(store)
	buyer := uuid.New()

	line, err := uc.AddLine(context.Background(), buyer, variantID, 20)
	require.NoError(t, err)
	assert.Equal(t, 4.25, line.UnitPrice)
	assert.Equal(t, "Essential Tee", line.Title)

	_, err = uc.AddLine(context.Background(), buyer, variantID, 0)
	assert.Error(t, err)

	_, err = uc.AddLine(context.Background(), buyer, uuid.New(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachDecorationCachesQuote(t *testing.T) {
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	seedTiers(t, store, uuid.New())
	uc := newCartUC(store)
	buyer := uuid.New()

	line, err := uc.AddLine(context.Background(), buyer, variantID, 20)
	require.NoError(t, err)

	line, err = uc.AttachDecoration(context.Background(), buyer, nil, line.ID, screenConfig(1))
	require.NoError(t, err)
	assert.Equal(t, 4.00, line.DecorationUnitPrice)
	assert.Equal(t, 25.00, line.SetupCharge)

	cart, err := uc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	// (4.25 + 4.00) * 20 + 25.00
	assert.InDelta(t, 190.00, uc.ComputeCartTotal(cart), 1e-9)
}

func TestAttachDecorationFailsOnPricingGap(t *testing.T) {
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	uc := newCartUC(store)
	buyer := uuid.New()

	line, err := uc.AddLine(context.Background(), buyer, variantID, 20)
	require.NoError(t, err)

	_, err = uc.AttachDecoration(context.Background(), buyer, nil, line.ID, screenConfig(1))
	assert.ErrorIs(t, err, domain.ErrNoPricingDefined)

	// the line is untouched: no zero-priced decoration parked in the cart
	cart, err := uc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Nil(t, cart.Lines[0].Decoration)
	assert.Zero(t, cart.Lines[0].DecorationUnitPrice)
}

func TestAttachDecorationForeignLine(t *testing.T) {
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	seedTiers(t, store, uuid.New())
	uc := newCartUC(store)

	line, err := uc.AddLine(context.Background(), uuid.New(), variantID, 20)
	require.NoError(t, err)

	_, err = uc.AttachDecoration(context.Background(), uuid.New(), nil, line.ID, screenConfig(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachDecorationRejectsInvalidConfig(t *testing.T) {
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	seedTiers(t, store, uuid.New())
	uc := newCartUC(store)
	buyer := uuid.New()

	line, err := uc.AddLine(context.Background(), buyer, variantID, 20)
	require.NoError(t, err)

	_, err = uc.AttachDecoration(context.Background(), buyer, nil, line.ID,
		domain.DecorationConfig{Method: domain.MethodScreen})
	assert.ErrorIs(t, err, domain.ErrIncompleteConfiguration)
}

func TestRemoveLine(t *testing.T) {
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	uc := newCartUC(store)
	buyer := uuid.New()

	line, err := uc.AddLine(context.Background(), buyer, variantID, 5)
	require.NoError(t, err)

	assert.ErrorIs(t, uc.RemoveLine(context.Background(), uuid.New(), line.ID), domain.ErrNotFound)
	require.NoError(t, uc.RemoveLine(context.Background(), buyer, line.ID))

	cart, err := uc.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}
