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

func intp(v int) *int { return &v }

func seedTiers(t *testing.T, store *memory.Store, acctID uuid.UUID) {
	t.Helper()
	err := store.Tiers().ReplaceAll(context.Background(), []domain.PriceTier{
		{Method: domain.MethodScreen, MinQty: 1, MaxQty: intp(11), PricePerUnit: 5.00, SetupCharge: 25.00},
		{Method: domain.MethodScreen, MinQty: 12, MaxQty: intp(47), PricePerUnit: 4.00, SetupCharge: 25.00},
		{Method: domain.MethodScreen, MinQty: 48, PricePerUnit: 3.00, SetupCharge: 25.00},
		{Method: domain.MethodScreen, CustomerAccountID: &acctID, MinQty: 1, MaxQty: intp(11), PricePerUnit: 4.50, SetupCharge: 20.00},
		{Method: domain.MethodScreen, CustomerAccountID: &acctID, MinQty: 12, PricePerUnit: 3.50, SetupCharge: 20.00},
	})
	require.NoError(t, err)
}

func TestResolvePicksHighestMinQtyWithinScope(t *testing.T) {
	store := memory.NewStore()
	acct := uuid.New()
	seedTiers(t, store, acct)
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	// Customer tiers outrank global, and within the customer scope the
	// 12+ band beats the 1-11 band for qty 20.
	q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodScreen, Quantity: 20, ColorCount: intp(1), CustomerAccountID: &acct,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.50, q.UnitPrice)
	assert.Equal(t, 20.00, q.SetupCharge)
	assert.InDelta(t, 3.50*20+20.00, q.TotalPrice, 1e-9)
}

func TestResolveFallsThroughToGlobalWhenCustomerBandExcludesQty(t *testing.T) {
	store := memory.NewStore()
	acct := uuid.New()
	// the customer's only band stops at 11; global covers 12-47
	require.NoError(t, store.Tiers().ReplaceAll(context.Background(), []domain.PriceTier{
		{Method: domain.MethodScreen, MinQty: 12, MaxQty: intp(47), PricePerUnit: 4.00, SetupCharge: 25.00},
		{Method: domain.MethodScreen, CustomerAccountID: &acct, MinQty: 1, MaxQty: intp(11), PricePerUnit: 4.50, SetupCharge: 20.00},
	}))
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodScreen, Quantity: 20, ColorCount: intp(1), CustomerAccountID: &acct,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.00, q.UnitPrice)
	assert.Equal(t, 25.00, q.SetupCharge)
	assert.InDelta(t, 105.00, q.TotalPrice, 1e-9)
}

func TestResolveGlobalOnlyWithoutAccount(t *testing.T) {
	store := memory.NewStore()
	seedTiers(t, store, uuid.New())
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodScreen, Quantity: 20, ColorCount: intp(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 4.00, q.UnitPrice)
	assert.Equal(t, 25.00, q.SetupCharge)
	assert.InDelta(t, 105.00, q.TotalPrice, 1e-9)
}

func TestResolveQuantityBoundaries(t *testing.T) {
	store := memory.NewStore()
	seedTiers(t, store, uuid.New())
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	cases := []struct {
		qty  int
		unit float64
	}{
		{1, 5.00},
		{11, 5.00},
		{12, 4.00},
		{47, 4.00},
		{48, 3.00},
		{5000, 3.00},
	}
	for _, c := range cases {
		q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
			Method: domain.MethodScreen, Quantity: c.qty,
		})
		require.NoError(t, err, "qty %d", c.qty)
		assert.Equal(t, c.unit, q.UnitPrice, "qty %d", c.qty)
	}
}

func TestResolveColorBound(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Tiers().ReplaceAll(context.Background(), []domain.PriceTier{
		{Method: domain.MethodScreen, MinQty: 1, MaxColors: intp(2), PricePerUnit: 4.00},
		{Method: domain.MethodScreen, MinQty: 2, PricePerUnit: 6.00},
	}))
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	// Three colors exceed the bounded tier; only the unbounded one matches.
	q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodScreen, Quantity: 10, ColorCount: intp(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 6.00, q.UnitPrice)

	// With the color count unknown, bounds are not enforced and the higher
	// MinQty band still wins.
	q, err = uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodScreen, Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 6.00, q.UnitPrice)
}

func TestResolveStitchBound(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Tiers().ReplaceAll(context.Background(), []domain.PriceTier{
		{Method: domain.MethodEmbroidery, MinQty: 1, MaxStitches: intp(8000), PricePerUnit: 2.50},
	}))
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	_, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodEmbroidery, Quantity: 10, StitchCount: intp(12000),
	})
	assert.ErrorIs(t, err, domain.ErrNoPricingDefined)

	// nil stitch count means "estimate later" and matches bounded tiers
	q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodEmbroidery, Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.50, q.UnitPrice)
}

func TestResolveNoPricingDefined(t *testing.T) {
	store := memory.NewStore()
	seedTiers(t, store, uuid.New())
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	_, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodDTG, Quantity: 10,
	})
	assert.ErrorIs(t, err, domain.ErrNoPricingDefined)
}

func TestResolveRejectsBadInput(t *testing.T) {
	store := memory.NewStore()
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	_, err := uc.Resolve(context.Background(), domain.DecorationRequest{Method: "LASER", Quantity: 10})
	assert.Error(t, err)

	_, err = uc.Resolve(context.Background(), domain.DecorationRequest{Method: domain.MethodScreen, Quantity: 0})
	assert.Error(t, err)
}

func TestForeignCustomerTiersNeverLeak(t *testing.T) {
	store := memory.NewStore()
	mine := uuid.New()
	other := uuid.New()
	require.NoError(t, store.Tiers().ReplaceAll(context.Background(), []domain.PriceTier{
		{Method: domain.MethodScreen, MinQty: 1, PricePerUnit: 5.00},
		{Method: domain.MethodScreen, CustomerAccountID: &other, MinQty: 1, PricePerUnit: 0.01},
	}))
	uc := &usecase.PricingUC{Tiers: store.Tiers()}

	q, err := uc.Resolve(context.Background(), domain.DecorationRequest{
		Method: domain.MethodScreen, Quantity: 10, CustomerAccountID: &mine,
	})
	require.NoError(t, err)
	assert.Equal(t, 5.00, q.UnitPrice)
}
