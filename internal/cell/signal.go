package cell

import (
	"errors"
	"fmt"
)

// ErrSignalOutOfRange is returned when a context scalar falls outside [0,1].
var ErrSignalOutOfRange = errors.New("context signal value out of [0,1] range")

// ContextSignal is the per-cell input to weight derivation. Harshness and
// urbanization are required; the remaining scalars are optional enrichment.
// nil means unavailable, and weight policies fall back to 0.5.
type ContextSignal struct {
	Harshness    float64 `json:"climate_harshness"`
	Urbanization float64 `json:"urbanization"`

	Sprawl           *float64 `json:"sprawl_index,omitempty"`
	DigitalIntensity *float64 `json:"digital_economy_intensity,omitempty"`
	RentalTightness  *float64 `json:"rental_market_tightness,omitempty"`
}

// NewContextSignal validates all present scalars. Producing collaborators
// must keep values in [0,1].
func NewContextSignal(sig ContextSignal) (ContextSignal, error) {
	if err := sig.Validate(); err != nil {
		return ContextSignal{}, err
	}
	return sig, nil
}

// Validate checks every present scalar lies in [0,1].
func (s ContextSignal) Validate() error {
	checks := []struct {
		name  string
		value *float64
	}{
		{"climate_harshness", &s.Harshness},
		{"urbanization", &s.Urbanization},
		{"sprawl_index", s.Sprawl},
		{"digital_economy_intensity", s.DigitalIntensity},
		{"rental_market_tightness", s.RentalTightness},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if *c.value < 0 || *c.value > 1 {
			return fmt.Errorf("%s = %f: %w", c.name, *c.value, ErrSignalOutOfRange)
		}
	}
	return nil
}

// SprawlOrDefault returns the sprawl index, or 0.5 when unavailable.
func (s ContextSignal) SprawlOrDefault() float64 { return orDefault(s.Sprawl) }

// DigitalIntensityOrDefault returns the digital-economy intensity, or 0.5
// when unavailable.
func (s ContextSignal) DigitalIntensityOrDefault() float64 { return orDefault(s.DigitalIntensity) }

// RentalTightnessOrDefault returns the rental-market tightness, or 0.5 when
// unavailable.
func (s ContextSignal) RentalTightnessOrDefault() float64 { return orDefault(s.RentalTightness) }

func orDefault(v *float64) float64 {
	if v == nil {
		return 0.5
	}
	return *v
}
