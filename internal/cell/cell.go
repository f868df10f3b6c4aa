package cell

import (
	"errors"
	"fmt"
)

// ErrMissingClimate is returned when a signal is requested from a cell
// without climate data. Weight derivation never silently defaults the
// harshness input since that would distort classification.
var ErrMissingClimate = errors.New("climate data required to derive context signal")

// Cell is a geographic cell with attached climate and context summaries.
// One instance per cell, shared read-only by every household in it.
type Cell struct {
	ID   string  `json:"cell_id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`

	Climate *ClimateProfile `json:"climate,omitempty"`
	Context *ContextFactors `json:"context,omitempty"`
}

// New validates coordinates and returns the cell.
func New(id string, lat, lon float64) (*Cell, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid longitude: %f", lon)
	}
	return &Cell{ID: id, Lat: lat, Lon: lon}, nil
}

// HasCompleteData reports whether both climate and context are attached.
func (c *Cell) HasCompleteData() bool {
	return c.Climate != nil && c.Context != nil
}

// Signal derives the context signal for weight policies. Climate data is
// required; without context factors, urbanization falls back to 0.5.
func (c *Cell) Signal() (*ContextSignal, error) {
	if c.Climate == nil {
		return nil, fmt.Errorf("cell %s: %w", c.ID, ErrMissingClimate)
	}
	urbanization := 0.5
	if c.Context != nil {
		urbanization = c.Context.Urbanization()
	}
	return &ContextSignal{
		Harshness:    c.Climate.Harshness(),
		Urbanization: urbanization,
	}, nil
}
