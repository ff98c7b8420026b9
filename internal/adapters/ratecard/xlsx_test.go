package ratecard_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/promosink/apparel/internal/adapters/ratecard"
	"github.com/promosink/apparel/internal/domain"
)

func writeCard(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	header := []any{"method", "customer_account_id", "min_qty", "max_qty", "max_colors", "max_stitches", "price_per_unit", "setup_charge"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "ratecard.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadRateCard(t *testing.T) {
	acct := uuid.New()
	path := writeCard(t, [][]any{
		{"SCREEN", "", 1, 11, "", "", 5.00, 25.00},
		{"screen", "", 12, "", 4, "", 4.00, 25.00},
		{"EMB", acct.String(), 1, "", "", 8000, 2.50, ""},
	})

	tiers, err := ratecard.Load(path)
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	assert.Equal(t, domain.MethodScreen, tiers[0].Method)
	assert.Nil(t, tiers[0].CustomerAccountID)
	require.NotNil(t, tiers[0].MaxQty)
	assert.Equal(t, 11, *tiers[0].MaxQty)

	// method is case-insensitive, open-ended max qty stays nil
	assert.Equal(t, domain.MethodScreen, tiers[1].Method)
	assert.Nil(t, tiers[1].MaxQty)
	require.NotNil(t, tiers[1].MaxColors)
	assert.Equal(t, 4, *tiers[1].MaxColors)

	require.NotNil(t, tiers[2].CustomerAccountID)
	assert.Equal(t, acct, *tiers[2].CustomerAccountID)
	require.NotNil(t, tiers[2].MaxStitches)
	assert.Equal(t, 8000, *tiers[2].MaxStitches)
	assert.Zero(t, tiers[2].SetupCharge)
}

func TestLoadRejectsBadRows(t *testing.T) {
	path := writeCard(t, [][]any{
		{"LASER", "", 1, "", "", "", 5.00, ""},
	})
	_, err := ratecard.Load(path)
	assert.Error(t, err)

	// duplicate min qty within one scope fails validation
	path = writeCard(t, [][]any{
		{"SCREEN", "", 12, "", "", "", 5.00, ""},
		{"SCREEN", "", 12, "", "", "", 4.00, ""},
	})
	_, err = ratecard.Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := ratecard.Load(filepath.Join(t.TempDir(), "absent.xlsx"))
	assert.Error(t, err)
}
