package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/promosink/apparel/internal/domain"
)

type WizardStage int

const (
	StageMethodSelect WizardStage = iota + 1
	StageLocationSelect
	StageLocationConfigure
	StageCommitted
)

func (s WizardStage) String() string {
	switch s {
	case StageMethodSelect:
		return "method_select"
	case StageLocationSelect:
		return "location_select"
	case StageLocationConfigure:
		return "location_configure"
	case StageCommitted:
		return "committed"
	}
	return "unknown"
}

// WizardSession is the in-flight state of one decoration configuration,
// scoped to one buyer and one cart line. Nothing is persisted between
// stages; an abandoned session simply ages out of memory.
type WizardSession struct {
	BuyerID    uuid.UUID
	CartLineID uuid.UUID
	Stage      WizardStage
	Method     domain.DecorationMethod
	Locations  []domain.DecorationLocation
}

// WizardUC drives the four-stage decoration configurator. Sessions are
// keyed by (buyer, cart line); concurrent edits of the same line are
// last-write-wins, different lines are fully independent.
type WizardUC struct {
	Storage domain.FileStorage
	Carts   *CartUC

	mu       sync.Mutex
	sessions map[string]*WizardSession
}

func sessionKey(buyerID, lineID uuid.UUID) string {
	return buyerID.String() + "|" + lineID.String()
}

func (uc *WizardUC) session(buyerID, lineID uuid.UUID) (*WizardSession, error) {
	s, ok := uc.sessions[sessionKey(buyerID, lineID)]
	if !ok {
		return nil, fmt.Errorf("%w: no wizard session for line %s", domain.ErrNotFound, lineID)
	}
	return s, nil
}

// Start opens a fresh session at MethodSelect, replacing any session
// already in flight for the same line.
func (uc *WizardUC) Start(buyerID, lineID uuid.UUID) *WizardSession {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.sessions == nil {
		uc.sessions = map[string]*WizardSession{}
	}
	s := &WizardSession{BuyerID: buyerID, CartLineID: lineID, Stage: StageMethodSelect}
	uc.sessions[sessionKey(buyerID, lineID)] = s
	return s
}

// SelectMethod chooses the decoration method and discards any previously
// accumulated locations.
func (uc *WizardUC) SelectMethod(buyerID, lineID uuid.UUID, method domain.DecorationMethod) (*WizardSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		return nil, err
	}
	if s.Stage != StageMethodSelect {
		return nil, fmt.Errorf("method can only be selected in stage %s, session is in %s", StageMethodSelect, s.Stage)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("unknown decoration method %q", method)
	}
	s.Method = method
	s.Locations = nil
	s.Stage = StageLocationSelect
	return s, nil
}

// AddLocation appends a location placeholder; parameters come later in
// LocationConfigure.
func (uc *WizardUC) AddLocation(buyerID, lineID uuid.UUID, placement domain.Placement) (*WizardSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		return nil, err
	}
	if s.Stage != StageLocationSelect {
		return nil, fmt.Errorf("locations can only be added in stage %s, session is in %s", StageLocationSelect, s.Stage)
	}
	if !placement.Valid() {
		return nil, fmt.Errorf("unknown placement %q", placement)
	}
	s.Locations = append(s.Locations, domain.DecorationLocation{Placement: placement})
	return s, nil
}

// Proceed advances LocationSelect to LocationConfigure; at least one
// location is required.
func (uc *WizardUC) Proceed(buyerID, lineID uuid.UUID) (*WizardSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		return nil, err
	}
	if s.Stage != StageLocationSelect {
		return nil, fmt.Errorf("cannot proceed from stage %s", s.Stage)
	}
	if len(s.Locations) == 0 {
		return nil, fmt.Errorf("%w: at least one location is required", domain.ErrIncompleteConfiguration)
	}
	s.Stage = StageLocationConfigure
	return s, nil
}

// Back navigates to the immediately preceding stage only. Returning to
// MethodSelect keeps the method until it is re-selected, which resets the
// locations.
func (uc *WizardUC) Back(buyerID, lineID uuid.UUID) (*WizardSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		return nil, err
	}
	switch s.Stage {
	case StageLocationSelect:
		s.Stage = StageMethodSelect
	case StageLocationConfigure:
		s.Stage = StageLocationSelect
	default:
		return nil, fmt.Errorf("cannot navigate back from stage %s", s.Stage)
	}
	return s, nil
}

// ConfigureLocation sets the method-specific parameters of one pending
// location.
func (uc *WizardUC) ConfigureLocation(buyerID, lineID uuid.UUID, index int, params domain.LocationParams) (*WizardSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		return nil, err
	}
	if s.Stage != StageLocationConfigure {
		return nil, fmt.Errorf("locations can only be configured in stage %s, session is in %s", StageLocationConfigure, s.Stage)
	}
	if index < 0 || index >= len(s.Locations) {
		return nil, fmt.Errorf("location index %d out of range", index)
	}
	if params == nil {
		return nil, errors.New("location params required")
	}
	if params.Method() != s.Method {
		return nil, fmt.Errorf("params are for %s, session method is %s", params.Method(), s.Method)
	}
	s.Locations[index].Params = params
	return s, nil
}

// AttachArtwork uploads reference art for one location and records the
// returned URL. A storage failure degrades to a placeholder reference
// instead of blocking the wizard.
func (uc *WizardUC) AttachArtwork(ctx context.Context, buyerID, lineID uuid.UUID, index int, fileName string, r io.Reader) (string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		return "", err
	}
	if s.Stage != StageLocationConfigure {
		return "", fmt.Errorf("artwork can only be attached in stage %s, session is in %s", StageLocationConfigure, s.Stage)
	}
	if index < 0 || index >= len(s.Locations) {
		return "", fmt.Errorf("location index %d out of range", index)
	}
	url := storeOrPlaceholder(ctx, uc.Storage, fileName, r)
	s.Locations[index].ArtworkURLs = append(s.Locations[index].ArtworkURLs, url)
	return url, nil
}

// Commit validates the accumulated configuration and hands it to the cart.
// On validation failure the session stays in LocationConfigure.
func (uc *WizardUC) Commit(ctx context.Context, buyerID uuid.UUID, customerAccountID *uuid.UUID, lineID uuid.UUID) (*domain.CartLine, error) {
	uc.mu.Lock()
	s, err := uc.session(buyerID, lineID)
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	if s.Stage != StageLocationConfigure {
		uc.mu.Unlock()
		return nil, fmt.Errorf("cannot commit from stage %s", s.Stage)
	}
	cfg := domain.DecorationConfig{Method: s.Method, Locations: append([]domain.DecorationLocation(nil), s.Locations...)}
	if err := cfg.Validate(); err != nil {
		uc.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrIncompleteConfiguration, err)
	}
	uc.mu.Unlock()

	line, err := uc.Carts.AttachDecoration(ctx, buyerID, customerAccountID, lineID, cfg)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	s.Stage = StageCommitted
	delete(uc.sessions, sessionKey(buyerID, lineID))
	uc.mu.Unlock()
	return line, nil
}

// storeOrPlaceholder is the shared degrade path for blob uploads.
func storeOrPlaceholder(ctx context.Context, storage domain.FileStorage, fileName string, r io.Reader) string {
	if storage != nil {
		url, err := storage.Store(ctx, fileName, r)
		if err == nil {
			return url
		}
		log.Warn().Err(err).Str("file", fileName).Msg("blob storage failed, using placeholder")
	}
	return fmt.Sprintf("https://demo.promosink.com/uploads/%d-%s", time.Now().UnixMilli(), fileName)
}
