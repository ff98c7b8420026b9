package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/promosink/apparel/internal/domain"
)

// OrderUC converts a priced cart into a persisted order and forwards it to
// the fulfillment API. Local persistence is the commit point: the cart is
// cleared once the order exists, and an external failure leaves a
// retryable order with no external ID instead of rolling anything back.
type OrderUC struct {
	Orders      domain.OrderRepo
	Carts       domain.CartRepo
	Fulfillment domain.FulfillmentGateway

	numMu   sync.Mutex
	lastNum int64
}

type SubmitRequest struct {
	PONumber       string
	ShipToName     string
	ShipToAddress1 string
	ShipToAddress2 string
	ShipToCity     string
	ShipToState    string
	ShipToZip      string
	ShipToCountry  string
	InHandsDate    *time.Time
	Notes          string
	ShippingMethod string
	ShippingCost   float64
}

// nextOrderNumber allocates a strictly increasing order number. Raw
// millisecond stamps collide under back-to-back submits, so the counter
// bumps past the last issued value when the clock has not moved.
func (uc *OrderUC) nextOrderNumber() string {
	uc.numMu.Lock()
	defer uc.numMu.Unlock()
	n := time.Now().UnixMilli()
	if n <= uc.lastNum {
		n = uc.lastNum + 1
	}
	uc.lastNum = n
	return fmt.Sprintf("ORD-%d", n)
}

func (uc *OrderUC) Submit(ctx context.Context, buyerID, customerAccountID uuid.UUID, req SubmitRequest) (*domain.Order, error) {
	cart, err := uc.Carts.FindOrCreateByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %v", domain.ErrUnavailable, err)
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// The order number exists before any external call and is the stable
	// idempotency key of the external sync.
	number := uc.nextOrderNumber()

	country := req.ShipToCountry
	if country == "" {
		country = "US"
	}
	order := &domain.Order{
		ID:                uuid.New(),
		OrderNumber:       number,
		CustomerAccountID: customerAccountID,
		BuyerID:           buyerID,
		Status:            domain.OrderStatusReceived,
		PONumber:          req.PONumber,
		ShipToName:        req.ShipToName,
		ShipToAddress1:    req.ShipToAddress1,
		ShipToAddress2:    req.ShipToAddress2,
		ShipToCity:        req.ShipToCity,
		ShipToState:       req.ShipToState,
		ShipToZip:         req.ShipToZip,
		ShipToCountry:     country,
		InHandsDate:       req.InHandsDate,
		Notes:             req.Notes,
		ShippingMethod:    req.ShippingMethod,
		ShippingCost:      req.ShippingCost,
	}

	for _, cl := range cart.Lines {
		line := domain.OrderLine{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: cl.ProductID,
			VariantID: cl.VariantID,
			Title:     cl.Title,
			Color:     cl.Color,
			Size:      cl.Size,
			Qty:       cl.Qty,
			UnitPrice: cl.UnitPrice,
		}
		if cl.Decoration != nil {
			// One decoration row per location for production routing; all
			// rows of a line share the same pricing snapshot.
			for _, loc := range cl.Decoration.Locations {
				line.Decorations = append(line.Decorations, domain.OrderDecoration{
					ID:          uuid.New(),
					OrderID:     order.ID,
					OrderLineID: line.ID,
					Method:      cl.Decoration.Method,
					Location:    loc,
					Qty:         cl.Qty,
					UnitPrice:   cl.DecorationUnitPrice,
					SetupCharge: cl.SetupCharge,
				})
			}
		}
		order.Lines = append(order.Lines, line)
	}

	if err := uc.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: persist order: %v", domain.ErrUnavailable, err)
	}

	// The order is committed; it must never be re-submitted by a second
	// cart flush even if anything after this point fails.
	if err := uc.Carts.Clear(ctx, cart.ID); err != nil {
		return order, fmt.Errorf("%w: clear cart after submit: %v", domain.ErrUnavailable, err)
	}

	if err := uc.syncExternal(ctx, order); err != nil {
		log.Warn().Err(err).Str("order_number", number).Msg("fulfillment submission failed, order kept for resync")
		return order, fmt.Errorf("order %s: %w", number, domain.ErrExternalSubmission)
	}
	return order, nil
}

// Resync re-attempts only the external submission step, keyed by the stable
// order number. It is an idempotent no-op once an external ID is recorded.
func (uc *OrderUC) Resync(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := uc.Orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.ExternalID != "" {
		return order, nil
	}
	if err := uc.syncExternal(ctx, order); err != nil {
		return order, fmt.Errorf("order %s: %w", orderNumber, domain.ErrExternalSubmission)
	}
	return order, nil
}

func (uc *OrderUC) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return uc.Orders.FindByNumber(ctx, orderNumber)
}

func (uc *OrderUC) syncExternal(ctx context.Context, order *domain.Order) error {
	extID, err := uc.Fulfillment.SubmitOrder(ctx, buildPayload(order))
	if err != nil {
		return err
	}
	if err := uc.Orders.SetExternalID(ctx, order.ID, extID); err != nil {
		return fmt.Errorf("record external id: %w", err)
	}
	order.ExternalID = extID
	return nil
}

// buildPayload derives the fulfillment wire format from the persisted order
// alone, so Submit and Resync send identical payloads.
func buildPayload(order *domain.Order) domain.OrderPayload {
	p := domain.OrderPayload{
		OrderNumber:       order.OrderNumber,
		CustomerAccountID: order.CustomerAccountID.String(),
		PONumber:          order.PONumber,
		ShipTo: domain.Address{
			Name:     order.ShipToName,
			Address1: order.ShipToAddress1,
			Address2: order.ShipToAddress2,
			City:     order.ShipToCity,
			State:    order.ShipToState,
			Zip:      order.ShipToZip,
			Country:  order.ShipToCountry,
		},
		ShippingMethod: order.ShippingMethod,
		ShippingCost:   order.ShippingCost,
		Notes:          order.Notes,
	}
	if order.InHandsDate != nil {
		p.InHandsDate = order.InHandsDate.Format("2006-01-02")
	}
	for _, l := range order.Lines {
		p.Items = append(p.Items, domain.PayloadItem{
			ProductID: l.ProductID.String(),
			VariantID: l.VariantID.String(),
			Quantity:  l.Qty,
			UnitPrice: l.UnitPrice,
		})
		for _, d := range l.Decorations {
			p.Decorations = append(p.Decorations, domain.PayloadDecoration{
				Method:      string(d.Method),
				Location:    string(d.Location.Placement),
				Quantity:    d.Qty,
				UnitPrice:   d.UnitPrice,
				SetupCharge: d.SetupCharge,
				Config:      d.Location,
			})
		}
	}
	return p
}
