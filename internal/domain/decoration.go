package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type DecorationMethod string

const (
	MethodScreen     DecorationMethod = "SCREEN"
	MethodEmbroidery DecorationMethod = "EMB"
	MethodDTG        DecorationMethod = "DTG"
	MethodDTF        DecorationMethod = "DTF"
)

func (m DecorationMethod) Valid() bool {
	switch m {
	case MethodScreen, MethodEmbroidery, MethodDTG, MethodDTF:
		return true
	}
	return false
}

type Placement string

const (
	PlacementLeftChest   Placement = "left_chest"
	PlacementFullFront   Placement = "full_front"
	PlacementFullBack    Placement = "full_back"
	PlacementRightSleeve Placement = "right_sleeve"
	PlacementLeftSleeve  Placement = "left_sleeve"
	PlacementCollar      Placement = "collar"
	PlacementOther       Placement = "other"
)

func (p Placement) Valid() bool {
	switch p {
	case PlacementLeftChest, PlacementFullFront, PlacementFullBack,
		PlacementRightSleeve, PlacementLeftSleeve, PlacementCollar, PlacementOther:
		return true
	}
	return false
}

// LocationParams is the method-specific parameter set of one decoration
// location. Exactly one concrete type exists per method family.
type LocationParams interface {
	Method() DecorationMethod
	validate() error
}

type ScreenParams struct {
	NumberOfColors int    `json:"number_of_colors"`
	Underbase      bool   `json:"underbase"`
	PrintSize      string `json:"print_size"`
}

func (ScreenParams) Method() DecorationMethod { return MethodScreen }

func (p ScreenParams) validate() error {
	if p.NumberOfColors < 1 {
		return errors.New("screen print requires at least one color")
	}
	return nil
}

type EmbroideryParams struct {
	// StitchCount left nil means "estimate later" and is valid.
	StitchCount *int `json:"stitch_count,omitempty"`
}

func (EmbroideryParams) Method() DecorationMethod { return MethodEmbroidery }

func (p EmbroideryParams) validate() error {
	if p.StitchCount != nil && *p.StitchCount < 0 {
		return errors.New("stitch count must be non-negative")
	}
	return nil
}

// TransferParams covers the two digital transfer methods (DTG and DTF).
type TransferParams struct {
	Kind      DecorationMethod `json:"kind"`
	PrintSize string           `json:"print_size"`
	Notes     string           `json:"notes"`
}

func (p TransferParams) Method() DecorationMethod { return p.Kind }

func (p TransferParams) validate() error {
	if p.Kind != MethodDTG && p.Kind != MethodDTF {
		return fmt.Errorf("transfer params require DTG or DTF, got %q", p.Kind)
	}
	return nil
}

type DecorationLocation struct {
	Placement   Placement
	Params      LocationParams
	ArtworkURLs []string
}

type locationWire struct {
	Placement   Placement         `json:"placement"`
	Method      DecorationMethod  `json:"method"`
	Screen      *ScreenParams     `json:"screen,omitempty"`
	Embroidery  *EmbroideryParams `json:"embroidery,omitempty"`
	Transfer    *TransferParams   `json:"transfer,omitempty"`
	ArtworkURLs []string          `json:"artwork_urls,omitempty"`
}

func (l DecorationLocation) MarshalJSON() ([]byte, error) {
	w := locationWire{Placement: l.Placement, ArtworkURLs: l.ArtworkURLs}
	switch p := l.Params.(type) {
	case ScreenParams:
		w.Method = MethodScreen
		w.Screen = &p
	case EmbroideryParams:
		w.Method = MethodEmbroidery
		w.Embroidery = &p
	case TransferParams:
		w.Method = p.Kind
		w.Transfer = &p
	case nil:
		// placeholder location, not yet configured
	default:
		return nil, fmt.Errorf("unknown location params %T", l.Params)
	}
	return json.Marshal(w)
}

func (l *DecorationLocation) UnmarshalJSON(data []byte) error {
	var w locationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	l.Placement = w.Placement
	l.ArtworkURLs = w.ArtworkURLs
	switch {
	case w.Screen != nil:
		l.Params = *w.Screen
	case w.Embroidery != nil:
		l.Params = *w.Embroidery
	case w.Transfer != nil:
		l.Params = *w.Transfer
	default:
		l.Params = nil
	}
	return nil
}

// DecorationConfig is the finished output of the configuration wizard,
// attached to one cart line and later snapshotted onto order decorations.
type DecorationConfig struct {
	Method    DecorationMethod     `json:"method"`
	Locations []DecorationLocation `json:"locations"`
}

func (c DecorationConfig) Validate() error {
	if !c.Method.Valid() {
		return fmt.Errorf("unknown decoration method %q", c.Method)
	}
	if len(c.Locations) == 0 {
		return errors.New("at least one location is required")
	}
	for i, loc := range c.Locations {
		if !loc.Placement.Valid() {
			return fmt.Errorf("location %d: unknown placement %q", i, loc.Placement)
		}
		if loc.Params == nil {
			return fmt.Errorf("location %d (%s) is not configured", i, loc.Placement)
		}
		if loc.Params.Method() != c.Method {
			return fmt.Errorf("location %d: params are for %s, config method is %s", i, loc.Params.Method(), c.Method)
		}
		if err := loc.Params.validate(); err != nil {
			return fmt.Errorf("location %d (%s): %w", i, loc.Placement, err)
		}
	}
	return nil
}

// PricingDims extracts the pricing-relevant complexity from the first
// location only. One method and one price per cart line even when several
// physical locations are printed; per-location pricing is out of scope.
func (c DecorationConfig) PricingDims() (colorCount, stitchCount *int) {
	if len(c.Locations) == 0 {
		return nil, nil
	}
	switch p := c.Locations[0].Params.(type) {
	case ScreenParams:
		n := p.NumberOfColors
		return &n, nil
	case EmbroideryParams:
		return nil, p.StitchCount
	}
	return nil, nil
}
