package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/promosink/apparel/internal/domain"
)

// ProofUC governs the artwork proof lifecycle gating production release.
type ProofUC struct {
	Orders  domain.OrderRepo
	Proofs  domain.ProofRepo
	Storage domain.FileStorage
}

// loadOwned fetches a proof plus its decoration and checks that the
// requester's customer account owns the order.
func (uc *ProofUC) loadOwned(ctx context.Context, requester uuid.UUID, proofID uuid.UUID) (*domain.Proof, *domain.OrderDecoration, error) {
	p, err := uc.Proofs.FindByID(ctx, proofID)
	if err != nil {
		return nil, nil, err
	}
	dec, order, err := uc.Orders.FindDecoration(ctx, p.OrderDecorationID)
	if err != nil {
		return nil, nil, err
	}
	if order.CustomerAccountID != requester {
		return nil, nil, domain.ErrForbidden
	}
	return p, dec, nil
}

// active reports whether the proof is the most recent round for its
// decoration. Superseded proofs remain as audit history and cannot
// transition.
func (uc *ProofUC) active(ctx context.Context, p *domain.Proof) (bool, error) {
	latest, err := uc.Proofs.LatestForDecoration(ctx, p.OrderDecorationID)
	if err != nil {
		return false, err
	}
	return latest.ID == p.ID, nil
}

func (uc *ProofUC) Approve(ctx context.Context, requester, proofID uuid.UUID, comment string) error {
	p, _, err := uc.loadOwned(ctx, requester, proofID)
	if err != nil {
		return err
	}
	switch p.Status {
	case domain.ProofApproved:
		return nil // already approved, idempotent
	case domain.ProofRejected:
		return errors.New("proof was rejected; a new proof round is required")
	}
	ok, err := uc.active(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("proof superseded by a newer round")
	}
	p.Status = domain.ProofApproved
	p.CustomerComment = strings.TrimSpace(comment)
	if err := uc.Proofs.Save(ctx, p); err != nil {
		return fmt.Errorf("%w: save proof: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (uc *ProofUC) Reject(ctx context.Context, requester, proofID uuid.UUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return domain.ErrCommentRequired
	}
	p, _, err := uc.loadOwned(ctx, requester, proofID)
	if err != nil {
		return err
	}
	switch p.Status {
	case domain.ProofRejected:
		return nil // already rejected, idempotent
	case domain.ProofApproved:
		return errors.New("proof is already approved")
	}
	ok, err := uc.active(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("proof superseded by a newer round")
	}
	p.Status = domain.ProofRejected
	p.CustomerComment = strings.TrimSpace(comment)
	if err := uc.Proofs.Save(ctx, p); err != nil {
		return fmt.Errorf("%w: save proof: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// UploadArtwork stores a new versioned asset on the decoration. When the
// file is a proof it also opens a fresh PENDING_CUSTOMER review round;
// plain reference art touches no proof.
func (uc *ProofUC) UploadArtwork(ctx context.Context, requester, decorationID uuid.UUID, fileName, fileType string, r io.Reader, isProof bool) (*domain.ArtworkAsset, error) {
	_, order, err := uc.Orders.FindDecoration(ctx, decorationID)
	if err != nil {
		return nil, err
	}
	if order.CustomerAccountID != requester {
		return nil, domain.ErrForbidden
	}

	url := storeOrPlaceholder(ctx, uc.Storage, fileName, r)

	count, err := uc.Proofs.AssetCount(ctx, decorationID)
	if err != nil {
		return nil, fmt.Errorf("%w: count assets: %v", domain.ErrUnavailable, err)
	}
	asset := &domain.ArtworkAsset{
		ID:                uuid.New(),
		OrderDecorationID: decorationID,
		BlobURL:           url,
		FileName:          fileName,
		FileType:          fileType,
		IsProof:           isProof,
		Version:           int(count) + 1,
	}
	if err := uc.Proofs.CreateAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("%w: save asset: %v", domain.ErrUnavailable, err)
	}

	if isProof {
		proof := &domain.Proof{
			ID:                uuid.New(),
			OrderDecorationID: decorationID,
			Status:            domain.ProofPendingCustomer,
		}
		if err := uc.Proofs.Create(ctx, proof); err != nil {
			return nil, fmt.Errorf("%w: open proof round: %v", domain.ErrUnavailable, err)
		}
	}
	return asset, nil
}
