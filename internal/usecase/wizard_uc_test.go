package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promosink/apparel/internal/adapters/repo/memory"
	"github.com/promosink/apparel/internal/domain"
	"github.com/promosink/apparel/internal/usecase"
)

// wizardFixture returns a wizard over a seeded store plus a priced cart line.
func wizardFixture(t *testing.T) (*usecase.WizardUC, uuid.UUID, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	variantID := seedCatalog(t, store)
	seedTiers(t, store, uuid.New())
	carts := newCartUC(store)

	buyer := uuid.New()
	line, err := carts.AddLine(context.Background(), buyer, variantID, 20)
	require.NoError(t, err)

	return &usecase.WizardUC{Carts: carts}, buyer, line.ID
}

func TestWizardHappyPath(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)

	sess := wiz.Start(buyer, lineID)
	assert.Equal(t, usecase.StageMethodSelect, sess.Stage)

	sess, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)
	assert.Equal(t, usecase.StageLocationSelect, sess.Stage)

	_, err = wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	require.NoError(t, err)

	sess, err = wiz.Proceed(buyer, lineID)
	require.NoError(t, err)
	assert.Equal(t, usecase.StageLocationConfigure, sess.Stage)

	_, err = wiz.ConfigureLocation(buyer, lineID, 0, domain.ScreenParams{NumberOfColors: 1})
	require.NoError(t, err)

	line, err := wiz.Commit(context.Background(), buyer, nil, lineID)
	require.NoError(t, err)
	require.NotNil(t, line.Decoration)
	assert.Equal(t, 4.00, line.DecorationUnitPrice)

	// session is gone after commit
	_, err = wiz.Proceed(buyer, lineID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWizardStageGuards(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)

	_, err := wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	assert.Error(t, err)

	_, err = wiz.ConfigureLocation(buyer, lineID, 0, domain.ScreenParams{NumberOfColors: 1})
	assert.Error(t, err)

	_, err = wiz.Commit(context.Background(), buyer, nil, lineID)
	assert.Error(t, err)

	_, err = wiz.SelectMethod(buyer, lineID, "LASER")
	assert.Error(t, err)
}

func TestWizardProceedRequiresLocation(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)
	_, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)

	_, err = wiz.Proceed(buyer, lineID)
	assert.ErrorIs(t, err, domain.ErrIncompleteConfiguration)
}

func TestWizardBackOneStageOnly(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)

	_, err := wiz.Back(buyer, lineID)
	assert.Error(t, err, "cannot go back from the first stage")

	_, err = wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)
	_, err = wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	require.NoError(t, err)
	_, err = wiz.Proceed(buyer, lineID)
	require.NoError(t, err)

	sess, err := wiz.Back(buyer, lineID)
	require.NoError(t, err)
	assert.Equal(t, usecase.StageLocationSelect, sess.Stage)

	sess, err = wiz.Back(buyer, lineID)
	require.NoError(t, err)
	assert.Equal(t, usecase.StageMethodSelect, sess.Stage)
}

func TestWizardMethodReselectResetsLocations(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)

	_, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)
	_, err = wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	require.NoError(t, err)
	_, err = wiz.Back(buyer, lineID)
	require.NoError(t, err)

	sess, err := wiz.SelectMethod(buyer, lineID, domain.MethodEmbroidery)
	require.NoError(t, err)
	assert.Empty(t, sess.Locations)
	assert.Equal(t, domain.MethodEmbroidery, sess.Method)
}

func TestWizardConfigureRejectsWrongMethodParams(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)
	_, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)
	_, err = wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	require.NoError(t, err)
	_, err = wiz.Proceed(buyer, lineID)
	require.NoError(t, err)

	_, err = wiz.ConfigureLocation(buyer, lineID, 0, domain.EmbroideryParams{})
	assert.Error(t, err)

	_, err = wiz.ConfigureLocation(buyer, lineID, 3, domain.ScreenParams{NumberOfColors: 1})
	assert.Error(t, err)
}

func TestWizardCommitFailureKeepsSession(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)
	_, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)
	_, err = wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	require.NoError(t, err)
	_, err = wiz.Proceed(buyer, lineID)
	require.NoError(t, err)

	// location never configured: commit fails, session stays editable
	_, err = wiz.Commit(context.Background(), buyer, nil, lineID)
	assert.ErrorIs(t, err, domain.ErrIncompleteConfiguration)

	_, err = wiz.ConfigureLocation(buyer, lineID, 0, domain.ScreenParams{NumberOfColors: 1})
	require.NoError(t, err)
	_, err = wiz.Commit(context.Background(), buyer, nil, lineID)
	assert.NoError(t, err)
}

func TestWizardSessionsAreIndependentPerLine(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	otherLine := uuid.New()

	wiz.Start(buyer, lineID)
	wiz.Start(buyer, otherLine)

	_, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)

	// the other session is still at method select
	sess, err := wiz.SelectMethod(buyer, otherLine, domain.MethodEmbroidery)
	require.NoError(t, err)
	assert.Equal(t, domain.MethodEmbroidery, sess.Method)
}

// embroideryWizard walks a session to the configure stage with the stitch
// count left unset ("estimate later").
func embroideryWizard(t *testing.T, store *memory.Store) (*usecase.WizardUC, uuid.UUID, uuid.UUID) {
	t.Helper()
	variantID := seedCatalog(t, store)
	carts := newCartUC(store)

	buyer := uuid.New()
	line, err := carts.AddLine(context.Background(), buyer, variantID, 20)
	require.NoError(t, err)

	wiz := &usecase.WizardUC{Carts: carts}
	wiz.Start(buyer, line.ID)
	_, err = wiz.SelectMethod(buyer, line.ID, domain.MethodEmbroidery)
	require.NoError(t, err)
	_, err = wiz.AddLocation(buyer, line.ID, domain.PlacementCollar)
	require.NoError(t, err)
	_, err = wiz.Proceed(buyer, line.ID)
	require.NoError(t, err)
	_, err = wiz.ConfigureLocation(buyer, line.ID, 0, domain.EmbroideryParams{})
	require.NoError(t, err)
	return wiz, buyer, line.ID
}

func TestWizardCommitEmbroideryUnsetStitchCount(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Tiers().ReplaceAll(context.Background(), []domain.PriceTier{
		{Method: domain.MethodEmbroidery, MinQty: 1, MaxStitches: intp(8000), PricePerUnit: 2.50, SetupCharge: 15.00},
	}))
	wiz, buyer, lineID := embroideryWizard(t, store)

	// the unknown stitch count matches the stitch-bounded tier
	line, err := wiz.Commit(context.Background(), buyer, nil, lineID)
	require.NoError(t, err)
	require.NotNil(t, line.Decoration)
	assert.Equal(t, 2.50, line.DecorationUnitPrice)
	assert.Equal(t, 15.00, line.SetupCharge)
}

func TestWizardCommitEmbroideryNoPricing(t *testing.T) {
	store := memory.NewStore()
	wiz, buyer, lineID := embroideryWizard(t, store)

	_, err := wiz.Commit(context.Background(), buyer, nil, lineID)
	assert.ErrorIs(t, err, domain.ErrNoPricingDefined)

	// the line stays undecorated rather than parking a zero price
	carts := newCartUC(store)
	cart, err := carts.GetCart(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Nil(t, cart.Lines[0].Decoration)
}

func TestWizardAttachArtwork(t *testing.T) {
	wiz, buyer, lineID := wizardFixture(t)
	wiz.Start(buyer, lineID)
	_, err := wiz.SelectMethod(buyer, lineID, domain.MethodScreen)
	require.NoError(t, err)
	_, err = wiz.AddLocation(buyer, lineID, domain.PlacementLeftChest)
	require.NoError(t, err)
	_, err = wiz.Proceed(buyer, lineID)
	require.NoError(t, err)

	url, err := wiz.AttachArtwork(context.Background(), buyer, lineID, 0, "logo.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Contains(t, url, "demo.promosink.com/uploads/")
	assert.Contains(t, url, "logo.png")
}
