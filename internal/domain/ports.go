package domain

import (
	"context"
	"io"
)

// FileStorage stores an uploaded blob and returns its public URL. Callers
// degrade to a placeholder reference when storage is unavailable; an upload
// failure never blocks the wizard or the proof flow.
type FileStorage interface {
	Store(ctx context.Context, fileName string, r io.Reader) (string, error)
}

type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type PayloadItem struct {
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type PayloadDecoration struct {
	Method      string             `json:"method"`
	Location    string             `json:"location"`
	Quantity    int                `json:"quantity"`
	UnitPrice   float64            `json:"unitPrice"`
	SetupCharge float64            `json:"setupCharge,omitempty"`
	Config      DecorationLocation `json:"config"`
}

// OrderPayload is the wire format of the fulfillment submission.
type OrderPayload struct {
	OrderNumber       string              `json:"orderNumber"`
	CustomerAccountID string              `json:"customerAccountId"`
	PONumber          string              `json:"poNumber,omitempty"`
	ShipTo            Address             `json:"shipTo"`
	InHandsDate       string              `json:"inHandsDate,omitempty"`
	ShippingMethod    string              `json:"shippingMethod"`
	ShippingCost      float64             `json:"shippingCost"`
	Items             []PayloadItem       `json:"items"`
	Decorations       []PayloadDecoration `json:"decorations"`
	Notes             string              `json:"notes,omitempty"`
}

type FulfillmentGateway interface {
	// SubmitOrder forwards the order and returns the external identifier.
	SubmitOrder(ctx context.Context, p OrderPayload) (string, error)
}

type ShippingOption struct {
	ID            string  `json:"id"`
	Carrier       string  `json:"carrier"`
	Service       string  `json:"service"`
	Rate          float64 `json:"rate"`
	EstimatedDays int     `json:"estimated_days,omitempty"`
}

// ShippingRateProvider is advisory checkout input; rates are neither
// validated nor cached by the core.
type ShippingRateProvider interface {
	Rates(ctx context.Context, from, to Address, weightOz float64) ([]ShippingOption, error)
}
