package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promosink/apparel/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) FindOrCreateByBuyer(ctx context.Context, buyerID uuid.UUID) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&c, "buyer_id = ?", buyerID).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = domain.Cart{ID: uuid.New(), BuyerID: buyerID}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepo) FindLine(ctx context.Context, lineID uuid.UUID) (*domain.CartLine, *domain.Cart, error) {
	var line domain.CartLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	var cart domain.Cart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", line.CartID).Error; err != nil {
		return nil, nil, err
	}
	return &line, &cart, nil
}

func (r *CartRepo) AddLine(ctx context.Context, line *domain.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *CartRepo) SaveLine(ctx context.Context, line *domain.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *CartRepo) RemoveLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.CartLine{}, "id = ?", lineID).Error
}

func (r *CartRepo) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartLine{}).Error
}
