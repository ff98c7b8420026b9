package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CustomerAccount is the company a buyer orders on behalf of. Customer
// scoped price tiers reference it; proofs are gated on it.
type CustomerAccount struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"size:140"`
	AccountNumber string    `gorm:"size:40;uniqueIndex"`
	CreatedAt     time.Time
}

type CustomerRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerAccount, error)
	Save(ctx context.Context, c *CustomerAccount) error
}
