package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProofStatus string

const (
	ProofPendingCustomer ProofStatus = "PENDING_CUSTOMER"
	ProofApproved        ProofStatus = "APPROVED"
	ProofRejected        ProofStatus = "REJECTED"
)

// Proof is one round of artwork review. Proofs are append-only: a rejection
// expects a re-upload that opens a fresh PENDING_CUSTOMER round, and only
// the most recent proof of a decoration is active for approval.
type Proof struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderDecorationID uuid.UUID   `gorm:"type:uuid;index"`
	Status            ProofStatus `gorm:"type:varchar(20);index"`
	CustomerComment   string      `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ArtworkAsset is an uploaded file reference. Versions count up per
// decoration; existing assets are never overwritten.
type ArtworkAsset struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderDecorationID uuid.UUID `gorm:"type:uuid;index"`
	BlobURL           string    `gorm:"size:255"`
	FileName          string    `gorm:"size:180"`
	FileType          string    `gorm:"size:80"`
	IsProof           bool      `gorm:"default:false"`
	Version           int       `gorm:"not null;default:1"`
	CreatedAt         time.Time
}

type ProofRepo interface {
	Create(ctx context.Context, p *Proof) error
	Save(ctx context.Context, p *Proof) error
	FindByID(ctx context.Context, id uuid.UUID) (*Proof, error)
	// LatestForDecoration returns the active proof, ErrNotFound when none.
	LatestForDecoration(ctx context.Context, decorationID uuid.UUID) (*Proof, error)
	CreateAsset(ctx context.Context, a *ArtworkAsset) error
	AssetCount(ctx context.Context, decorationID uuid.UUID) (int64, error)
}
