// Package memory holds in-memory repository implementations backing the
// test suites. One Store carries all data; per-interface repos wrap it.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promosink/apparel/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	tiers    []domain.PriceTier
	products map[uuid.UUID]*domain.Product
	variants map[uuid.UUID]*domain.Variant
	carts    map[uuid.UUID]*domain.Cart
	byBuyer  map[uuid.UUID]uuid.UUID
	orders   map[uuid.UUID]*domain.Order
	byNumber map[string]uuid.UUID
	decos    map[uuid.UUID]*decoRef
	proofs   map[uuid.UUID]*domain.Proof
	proofSeq map[uuid.UUID]int64
	assets   []domain.ArtworkAsset
	seq      int64
}

type decoRef struct {
	deco    *domain.OrderDecoration
	orderID uuid.UUID
}

func NewStore() *Store {
	return &Store{
		products: map[uuid.UUID]*domain.Product{},
		variants: map[uuid.UUID]*domain.Variant{},
		carts:    map[uuid.UUID]*domain.Cart{},
		byBuyer:  map[uuid.UUID]uuid.UUID{},
		orders:   map[uuid.UUID]*domain.Order{},
		byNumber: map[string]uuid.UUID{},
		decos:    map[uuid.UUID]*decoRef{},
		proofs:   map[uuid.UUID]*domain.Proof{},
		proofSeq: map[uuid.UUID]int64{},
	}
}

func (s *Store) Tiers() *TierRepo       { return &TierRepo{s: s} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Carts() *CartRepo       { return &CartRepo{s: s} }
func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s: s} }
func (s *Store) Proofs() *ProofRepo     { return &ProofRepo{s: s} }

// --- price tiers ---

type TierRepo struct{ s *Store }

func (r *TierRepo) ForMethod(_ context.Context, method domain.DecorationMethod, customerAccountID *uuid.UUID) ([]domain.PriceTier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.PriceTier
	for _, t := range r.s.tiers {
		if t.Method != method {
			continue
		}
		if t.CustomerAccountID != nil {
			if customerAccountID == nil || *t.CustomerAccountID != *customerAccountID {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TierRepo) ReplaceAll(_ context.Context, tiers []domain.PriceTier) error {
	if err := domain.ValidateTiers(tiers); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tiers = append([]domain.PriceTier(nil), tiers...)
	for i := range r.s.tiers {
		if r.s.tiers[i].ID == uuid.Nil {
			r.s.tiers[i].ID = uuid.New()
		}
	}
	return nil
}

func (r *TierRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.tiers)), nil
}

// --- products ---

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variants {
		if p.Variants[i].ID == uuid.Nil {
			p.Variants[i].ID = uuid.New()
		}
		p.Variants[i].ProductID = p.ID
		v := p.Variants[i]
		r.s.variants[v.ID] = &v
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) FindVariant(_ context.Context, variantID uuid.UUID) (*domain.Product, *domain.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.variants[variantID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	p, ok := r.s.products[v.ProductID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	pc, vc := *p, *v
	return &pc, &vc, nil
}

// --- carts ---

type CartRepo struct{ s *Store }

func (r *CartRepo) FindOrCreateByBuyer(_ context.Context, buyerID uuid.UUID) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.byBuyer[buyerID]; ok {
		return cloneCart(r.s.carts[id]), nil
	}
	c := &domain.Cart{ID: uuid.New(), BuyerID: buyerID}
	r.s.carts[c.ID] = c
	r.s.byBuyer[buyerID] = c.ID
	return cloneCart(c), nil
}

func (r *CartRepo) FindLine(_ context.Context, lineID uuid.UUID) (*domain.CartLine, *domain.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.carts {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				line := c.Lines[i]
				return &line, cloneCart(c), nil
			}
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (r *CartRepo) AddLine(_ context.Context, line *domain.CartLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[line.CartID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Lines = append(c.Lines, *line)
	return nil
}

func (r *CartRepo) SaveLine(_ context.Context, line *domain.CartLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[line.CartID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].ID == line.ID {
			c.Lines[i] = *line
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *CartRepo) RemoveLine(_ context.Context, lineID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.carts {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *CartRepo) Clear(_ context.Context, cartID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[cartID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Lines = nil
	return nil
}

func cloneCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Lines = append([]domain.CartLine(nil), c.Lines...)
	return &cp
}

// --- orders ---

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, dup := r.s.byNumber[o.OrderNumber]; dup {
		return domain.ErrUnavailable
	}
	cp := *o
	cp.Lines = append([]domain.OrderLine(nil), o.Lines...)
	r.s.orders[o.ID] = &cp
	r.s.byNumber[o.OrderNumber] = o.ID
	for li := range cp.Lines {
		cp.Lines[li].Decorations = append([]domain.OrderDecoration(nil), cp.Lines[li].Decorations...)
		for di := range cp.Lines[li].Decorations {
			d := &cp.Lines[li].Decorations[di]
			r.s.decos[d.ID] = &decoRef{deco: d, orderID: o.ID}
		}
	}
	return nil
}

func (r *OrderRepo) FindByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byNumber[orderNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.s.orders[id]
	return &cp, nil
}

func (r *OrderRepo) SetExternalID(_ context.Context, orderID uuid.UUID, externalID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.ExternalID = externalID
	return nil
}

func (r *OrderRepo) FindDecoration(_ context.Context, decorationID uuid.UUID) (*domain.OrderDecoration, *domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ref, ok := r.s.decos[decorationID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	dc := *ref.deco
	oc := *r.s.orders[ref.orderID]
	return &dc, &oc, nil
}

// --- proofs and artwork ---

type ProofRepo struct{ s *Store }

func (r *ProofRepo) Create(_ context.Context, p *domain.Proof) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.s.seq++
	cp := *p
	r.s.proofs[p.ID] = &cp
	r.s.proofSeq[p.ID] = r.s.seq
	return nil
}

func (r *ProofRepo) Save(_ context.Context, p *domain.Proof) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.proofs[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.s.proofs[p.ID] = &cp
	return nil
}

func (r *ProofRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Proof, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.proofs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProofRepo) LatestForDecoration(_ context.Context, decorationID uuid.UUID) (*domain.Proof, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *domain.Proof
	var latestSeq int64 = -1
	for id, p := range r.s.proofs {
		if p.OrderDecorationID != decorationID {
			continue
		}
		if sq := r.s.proofSeq[id]; sq > latestSeq {
			latest, latestSeq = p, sq
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *ProofRepo) CreateAsset(_ context.Context, a *domain.ArtworkAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.assets = append(r.s.assets, *a)
	return nil
}

func (r *ProofRepo) AssetCount(_ context.Context, decorationID uuid.UUID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, a := range r.s.assets {
		if a.OrderDecorationID == decorationID {
			n++
		}
	}
	return n, nil
}
