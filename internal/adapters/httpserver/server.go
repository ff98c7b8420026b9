// Package httpserver exposes the pricing, wizard, cart, checkout and proof
// operations as a JSON API. Identity comes from the session collaborator
// via headers; this layer never issues credentials.
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promosink/apparel/internal/domain"
	"github.com/promosink/apparel/internal/usecase"
)

type Server struct {
	mux      *http.ServeMux
	pricing  *usecase.PricingUC
	wizard   *usecase.WizardUC
	carts    *usecase.CartUC
	orders   *usecase.OrderUC
	proofs   *usecase.ProofUC
	shipping domain.ShippingRateProvider
	origin   domain.Address
	uploads  string
}

func New(pricing *usecase.PricingUC, wizard *usecase.WizardUC, carts *usecase.CartUC, orders *usecase.OrderUC, proofs *usecase.ProofUC, shipping domain.ShippingRateProvider, origin domain.Address, uploadsDir string) http.Handler {
	s := &Server{
		mux:     http.NewServeMux(),
		pricing: pricing, wizard: wizard, carts: carts,
		orders: orders, proofs: proofs, shipping: shipping,
		origin: origin, uploads: uploadsDir,
	}
	s.routes()
	return Chain(s.mux, RequestID, Recovery, Logging)
}

func (s *Server) routes() {
	if s.uploads != "" {
		s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploads))))
	}

	s.mux.HandleFunc("/api/pricing/resolve", s.apiPricingResolve)

	s.mux.HandleFunc("/api/wizard/start", s.apiWizardStart)
	s.mux.HandleFunc("/api/wizard/method", s.apiWizardMethod)
	s.mux.HandleFunc("/api/wizard/locations", s.apiWizardLocations)
	s.mux.HandleFunc("/api/wizard/next", s.apiWizardNext)
	s.mux.HandleFunc("/api/wizard/back", s.apiWizardBack)
	s.mux.HandleFunc("/api/wizard/configure", s.apiWizardConfigure)
	s.mux.HandleFunc("/api/wizard/artwork", s.apiWizardArtwork)
	s.mux.HandleFunc("/api/wizard/commit", s.apiWizardCommit)

	s.mux.HandleFunc("/api/cart", s.apiCart)
	s.mux.HandleFunc("/api/cart/add", s.apiCartAdd)
	s.mux.HandleFunc("/api/cart/remove", s.apiCartRemove)
	s.mux.HandleFunc("/api/cart/decoration", s.apiCartDecoration)

	s.mux.HandleFunc("/api/checkout/shipping", s.apiCheckoutShipping)
	s.mux.HandleFunc("/api/checkout/submit", s.apiCheckoutSubmit)

	s.mux.HandleFunc("/api/orders/", s.apiOrder)
	s.mux.HandleFunc("/api/proofs/", s.apiProof)
	s.mux.HandleFunc("/api/decorations/", s.apiDecorationArtwork)
}

type identity struct {
	BuyerID           uuid.UUID
	CustomerAccountID *uuid.UUID
}

func (s *Server) identify(w http.ResponseWriter, r *http.Request) (identity, bool) {
	buyer, err := uuid.Parse(r.Header.Get("X-Buyer-Id"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return identity{}, false
	}
	id := identity{BuyerID: buyer}
	if raw := r.Header.Get("X-Customer-Account-Id"); raw != "" {
		acct, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			return identity{}, false
		}
		id.CustomerAccountID = &acct
	}
	return id, true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

// --- pricing ---

func (s *Server) apiPricingResolve(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req struct {
		Method      domain.DecorationMethod `json:"method"`
		Quantity    int                     `json:"quantity"`
		ColorCount  *int                    `json:"color_count"`
		StitchCount *int                    `json:"stitch_count"`
	}
	if !decode(w, r, &req) {
		return
	}
	quote, err := s.pricing.Resolve(r.Context(), domain.DecorationRequest{
		Method:            req.Method,
		Quantity:          req.Quantity,
		ColorCount:        req.ColorCount,
		StitchCount:       req.StitchCount,
		CustomerAccountID: id.CustomerAccountID,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// --- wizard ---

type wizardRef struct {
	CartLineID uuid.UUID `json:"cart_line_id"`
}

type wizardStateResp struct {
	Stage     string                      `json:"stage"`
	Method    domain.DecorationMethod     `json:"method,omitempty"`
	Locations []domain.DecorationLocation `json:"locations"`
}

func wizardState(sess *usecase.WizardSession) wizardStateResp {
	return wizardStateResp{Stage: sess.Stage.String(), Method: sess.Method, Locations: sess.Locations}
}

func (s *Server) apiWizardStart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req wizardRef
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, wizardState(s.wizard.Start(id.BuyerID, req.CartLineID)))
}

func (s *Server) apiWizardMethod(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req struct {
		wizardRef
		Method domain.DecorationMethod `json:"method"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.wizard.SelectMethod(id.BuyerID, req.CartLineID, req.Method)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardState(sess))
}

func (s *Server) apiWizardLocations(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req struct {
		wizardRef
		Placement domain.Placement `json:"placement"`
	}
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.wizard.AddLocation(id.BuyerID, req.CartLineID, req.Placement)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardState(sess))
}

func (s *Server) apiWizardNext(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req wizardRef
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.wizard.Proceed(id.BuyerID, req.CartLineID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardState(sess))
}

func (s *Server) apiWizardBack(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req wizardRef
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.wizard.Back(id.BuyerID, req.CartLineID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardState(sess))
}

// apiWizardConfigure carries the params under a key matching the method,
// the same envelope DecorationLocation uses on the wire.
func (s *Server) apiWizardConfigure(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req struct {
		wizardRef
		Index      int                      `json:"index"`
		Screen     *domain.ScreenParams     `json:"screen"`
		Embroidery *domain.EmbroideryParams `json:"embroidery"`
		Transfer   *domain.TransferParams   `json:"transfer"`
	}
	if !decode(w, r, &req) {
		return
	}
	var params domain.LocationParams
	switch {
	case req.Screen != nil:
		params = *req.Screen
	case req.Embroidery != nil:
		params = *req.Embroidery
	case req.Transfer != nil:
		params = *req.Transfer
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing location params"})
		return
	}
	sess, err := s.wizard.ConfigureLocation(id.BuyerID, req.CartLineID, req.Index, params)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardState(sess))
}

func (s *Server) apiWizardArtwork(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	lineID, err := uuid.Parse(r.FormValue("cart_line_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart_line_id"})
		return
	}
	index := 0
	if v := r.FormValue("index"); v != "" {
		if index, err = strconv.Atoi(v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index"})
			return
		}
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file provided"})
		return
	}
	defer file.Close()
	url, err := s.wizard.AttachArtwork(r.Context(), id.BuyerID, lineID, index, hdr.Filename, file)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) apiWizardCommit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req wizardRef
	if !decode(w, r, &req) {
		return
	}
	line, err := s.wizard.Commit(r.Context(), id.BuyerID, id.CustomerAccountID, req.CartLineID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// --- cart ---

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	cart, err := s.carts.GetCart(r.Context(), id.BuyerID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart, "total": s.carts.ComputeCartTotal(cart)})
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req struct {
		VariantID uuid.UUID `json:"variant_id"`
		Qty       int       `json:"qty"`
	}
	if !decode(w, r, &req) {
		return
	}
	line, err := s.carts.AddLine(r.Context(), id.BuyerID, req.VariantID, req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req wizardRef
	if !decode(w, r, &req) {
		return
	}
	if err := s.carts.RemoveLine(r.Context(), id.BuyerID, req.CartLineID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// apiCartDecoration attaches a finished configuration directly, for API
// clients that build the config themselves instead of using the wizard.
func (s *Server) apiCartDecoration(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	var req struct {
		CartLineID uuid.UUID               `json:"cart_line_id"`
		Config     domain.DecorationConfig `json:"config"`
	}
	if !decode(w, r, &req) {
		return
	}
	line, err := s.carts.AttachDecoration(r.Context(), id.BuyerID, id.CustomerAccountID, req.CartLineID, req.Config)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// --- checkout ---

func (s *Server) apiCheckoutShipping(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if _, ok := s.identify(w, r); !ok {
		return
	}
	var req struct {
		ShipTo   domain.Address `json:"ship_to"`
		WeightOz float64        `json:"weight_oz"`
	}
	if !decode(w, r, &req) {
		return
	}
	rates, err := s.shipping.Rates(r.Context(), s.origin, req.ShipTo, req.WeightOz)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": rates})
}

func (s *Server) apiCheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	if id.CustomerAccountID == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "customer account required"})
		return
	}
	var req struct {
		PONumber       string  `json:"po_number"`
		ShipToName     string  `json:"ship_to_name"`
		ShipToAddress1 string  `json:"ship_to_address1"`
		ShipToAddress2 string  `json:"ship_to_address2"`
		ShipToCity     string  `json:"ship_to_city"`
		ShipToState    string  `json:"ship_to_state"`
		ShipToZip      string  `json:"ship_to_zip"`
		ShipToCountry  string  `json:"ship_to_country"`
		InHandsDate    string  `json:"in_hands_date"`
		Notes          string  `json:"notes"`
		ShippingMethod string  `json:"shipping_method"`
		ShippingCost   float64 `json:"shipping_cost"`
	}
	if !decode(w, r, &req) {
		return
	}
	sub := usecase.SubmitRequest{
		PONumber:       req.PONumber,
		ShipToName:     req.ShipToName,
		ShipToAddress1: req.ShipToAddress1,
		ShipToAddress2: req.ShipToAddress2,
		ShipToCity:     req.ShipToCity,
		ShipToState:    req.ShipToState,
		ShipToZip:      req.ShipToZip,
		ShipToCountry:  req.ShipToCountry,
		Notes:          req.Notes,
		ShippingMethod: req.ShippingMethod,
		ShippingCost:   req.ShippingCost,
	}
	if req.InHandsDate != "" {
		d, err := time.Parse("2006-01-02", req.InHandsDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "in_hands_date"})
			return
		}
		sub.InHandsDate = &d
	}
	order, err := s.orders.Submit(r.Context(), id.BuyerID, *id.CustomerAccountID, sub)
	if errors.Is(err, domain.ErrExternalSubmission) {
		// order persisted; external sync pending, retryable via resync
		writeJSON(w, http.StatusAccepted, map[string]any{
			"order_number":  order.OrderNumber,
			"status":        order.Status,
			"external_sync": "pending",
		})
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"external_id":  order.ExternalID,
	})
}

// --- orders ---

func (s *Server) apiOrder(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if number, found := strings.CutSuffix(rest, "/resync"); found {
		s.apiOrderResync(w, r, number)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	order, err := s.orders.GetByNumber(r.Context(), rest)
	if err != nil {
		writeErr(w, err)
		return
	}
	if id.CustomerAccountID == nil || order.CustomerAccountID != *id.CustomerAccountID {
		writeErr(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) apiOrderResync(w http.ResponseWriter, r *http.Request, number string) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	existing, err := s.orders.GetByNumber(r.Context(), number)
	if err != nil {
		writeErr(w, err)
		return
	}
	if id.CustomerAccountID == nil || existing.CustomerAccountID != *id.CustomerAccountID {
		writeErr(w, domain.ErrNotFound)
		return
	}
	order, err := s.orders.Resync(r.Context(), number)
	if errors.Is(err, domain.ErrExternalSubmission) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"order_number":  order.OrderNumber,
			"external_sync": "pending",
		})
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_number": order.OrderNumber,
		"external_id":  order.ExternalID,
	})
}

// --- proofs ---

func (s *Server) apiProof(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	if id.CustomerAccountID == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "customer account required"})
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/proofs/")
	var rawID, action string
	if v, found := strings.CutSuffix(rest, "/approve"); found {
		rawID, action = v, "approve"
	} else if v, found := strings.CutSuffix(rest, "/reject"); found {
		rawID, action = v, "reject"
	} else {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	proofID, err := uuid.Parse(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "proof id"})
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if !decode(w, r, &req) {
		return
	}
	if action == "approve" {
		err = s.proofs.Approve(r.Context(), *id.CustomerAccountID, proofID, req.Comment)
	} else {
		err = s.proofs.Reject(r.Context(), *id.CustomerAccountID, proofID, req.Comment)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --- artwork upload against a persisted order decoration ---

func (s *Server) apiDecorationArtwork(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id, ok := s.identify(w, r)
	if !ok {
		return
	}
	if id.CustomerAccountID == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "customer account required"})
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/decorations/")
	rawID, found := strings.CutSuffix(rest, "/artwork")
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	decorationID, err := uuid.Parse(rawID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "decoration id"})
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no file provided"})
		return
	}
	defer file.Close()
	isProof := r.FormValue("is_proof") == "true"
	asset, err := s.proofs.UploadArtwork(r.Context(), *id.CustomerAccountID, decorationID, hdr.Filename, hdr.Header.Get("Content-Type"), file, isProof)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}
