package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promosink/apparel/internal/domain"
)

type ProofRepo struct{ db *gorm.DB }

func NewProofRepo(db *gorm.DB) *ProofRepo { return &ProofRepo{db: db} }

func (r *ProofRepo) Create(ctx context.Context, p *domain.Proof) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProofRepo) Save(ctx context.Context, p *domain.Proof) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProofRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Proof, error) {
	var p domain.Proof
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProofRepo) LatestForDecoration(ctx context.Context, decorationID uuid.UUID) (*domain.Proof, error) {
	var p domain.Proof
	err := r.db.WithContext(ctx).
		Where("order_decoration_id = ?", decorationID).
		Order("created_at desc").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProofRepo) CreateAsset(ctx context.Context, a *domain.ArtworkAsset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ProofRepo) AssetCount(ctx context.Context, decorationID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ArtworkAsset{}).
		Where("order_decoration_id = ?", decorationID).Count(&n).Error
	return n, err
}
