// Package promosink is the client for the Promos Ink fulfillment API.
package promosink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/promosink/apparel/internal/domain"
)

type Gateway struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewGateway returns a client for the given endpoint. With an empty
// endpoint or key the gateway runs stubbed and hands out demo external IDs,
// so the order flow works end to end without credentials.
func NewGateway(endpoint, apiKey string) *Gateway {
	return &Gateway{endpoint: endpoint, apiKey: apiKey, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

func (g *Gateway) stubbed() bool { return g.endpoint == "" || g.apiKey == "" }

type orderResp struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	ExternalID  string `json:"externalId"`
}

func (g *Gateway) SubmitOrder(ctx context.Context, p domain.OrderPayload) (string, error) {
	if p.OrderNumber == "" {
		return "", errors.New("order number required")
	}
	if g.stubbed() {
		log.Info().Str("order_number", p.OrderNumber).Msg("fulfillment API not configured, returning demo external id")
		return fmt.Sprintf("ext_demo_%d", time.Now().UnixMilli()), nil
	}

	buf, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal order payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/orders", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fulfillment API unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("fulfillment API status %d: %s", res.StatusCode, string(body))
	}
	var out orderResp
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode fulfillment response: %w", err)
	}
	if out.ExternalID == "" {
		return "", errors.New("fulfillment response missing external id")
	}
	return out.ExternalID, nil
}
