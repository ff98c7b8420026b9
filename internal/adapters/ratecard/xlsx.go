// Package ratecard loads decoration price tiers from an .xlsx rate card,
// the fixture path used when pricing-source is not the live table.
package ratecard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/promosink/apparel/internal/domain"
)

// Expected columns on the first sheet, first row being the header:
// method | customer_account_id | min_qty | max_qty | max_colors | max_stitches | price_per_unit | setup_charge
// Empty cells in the optional columns mean unbounded / global scope.
func Load(path string) ([]domain.PriceTier, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open rate card %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("rate card %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rate card %s: %w", path, err)
	}

	var tiers []domain.PriceTier
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}
		t, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("rate card %s row %d: %w", path, i+1, err)
		}
		tiers = append(tiers, t)
	}
	if err := domain.ValidateTiers(tiers); err != nil {
		return nil, fmt.Errorf("rate card %s: %w", path, err)
	}
	return tiers, nil
}

func parseRow(row []string) (domain.PriceTier, error) {
	t := domain.PriceTier{ID: uuid.New()}

	t.Method = domain.DecorationMethod(strings.ToUpper(strings.TrimSpace(cell(row, 0))))
	if !t.Method.Valid() {
		return t, fmt.Errorf("unknown method %q", cell(row, 0))
	}
	if v := strings.TrimSpace(cell(row, 1)); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return t, fmt.Errorf("customer_account_id: %w", err)
		}
		t.CustomerAccountID = &id
	}

	minQty, err := strconv.Atoi(strings.TrimSpace(cell(row, 2)))
	if err != nil {
		return t, fmt.Errorf("min_qty: %w", err)
	}
	t.MinQty = minQty

	if t.MaxQty, err = optInt(cell(row, 3), "max_qty"); err != nil {
		return t, err
	}
	if t.MaxColors, err = optInt(cell(row, 4), "max_colors"); err != nil {
		return t, err
	}
	if t.MaxStitches, err = optInt(cell(row, 5), "max_stitches"); err != nil {
		return t, err
	}

	if t.PricePerUnit, err = strconv.ParseFloat(strings.TrimSpace(cell(row, 6)), 64); err != nil {
		return t, fmt.Errorf("price_per_unit: %w", err)
	}
	if v := strings.TrimSpace(cell(row, 7)); v != "" {
		if t.SetupCharge, err = strconv.ParseFloat(v, 64); err != nil {
			return t, fmt.Errorf("setup_charge: %w", err)
		}
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func optInt(v, field string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &n, nil
}
