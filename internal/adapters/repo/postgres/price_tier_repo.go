package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promosink/apparel/internal/domain"
)

type PriceTierRepo struct{ db *gorm.DB }

func NewPriceTierRepo(db *gorm.DB) *PriceTierRepo { return &PriceTierRepo{db: db} }

func (r *PriceTierRepo) ForMethod(ctx context.Context, method domain.DecorationMethod, customerAccountID *uuid.UUID) ([]domain.PriceTier, error) {
	var list []domain.PriceTier
	q := r.db.WithContext(ctx).Where("method = ?", method)
	if customerAccountID != nil {
		q = q.Where("customer_account_id = ? OR customer_account_id IS NULL", *customerAccountID)
	} else {
		q = q.Where("customer_account_id IS NULL")
	}
	if err := q.Order("min_qty asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ReplaceAll swaps the whole rate card atomically. The incoming set is
// validated first; a fixture with duplicate MinQty per (method, scope)
// never reaches the table.
func (r *PriceTierRepo) ReplaceAll(ctx context.Context, tiers []domain.PriceTier) error {
	if err := domain.ValidateTiers(tiers); err != nil {
		return err
	}
	for i := range tiers {
		if tiers[i].ID == uuid.Nil {
			tiers[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.PriceTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}
		return tx.Create(&tiers).Error
	})
}

func (r *PriceTierRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.PriceTier{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
