package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promosink/apparel/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (r *OrderRepo) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Decorations").
		First(&o, "order_number = ?", orderNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) SetExternalID(ctx context.Context, orderID uuid.UUID, externalID string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).Update("external_id", externalID).Error
}

func (r *OrderRepo) FindDecoration(ctx context.Context, decorationID uuid.UUID) (*domain.OrderDecoration, *domain.Order, error) {
	var d domain.OrderDecoration
	if err := r.db.WithContext(ctx).First(&d, "id = ?", decorationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", d.OrderID).Error; err != nil {
		return nil, nil, err
	}
	return &d, &o, nil
}
