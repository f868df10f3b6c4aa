package scoring

import (
	"errors"

	"github.com/dylanlt/poverty-explorer/internal/cell"
)

// ErrMissingContext is returned when context-dependent weights are requested
// without a context signal.
var ErrMissingContext = errors.New("context signal required to derive adjusted weights")

// ClimateAdjustedWeights derives a normalized weight table from a cell's
// context signal. Energy indicators scale with climate harshness, water and
// sanitation with urbanization; the universal indicators (nutrition,
// mortality, schooling, assets) stay fixed to preserve comparability with
// the standard MPI's core dimensions.
func ClimateAdjustedWeights(sig *cell.ContextSignal) (WeightTable, error) {
	if sig == nil {
		return WeightTable{}, ErrMissingContext
	}
	return climateBase(sig.Harshness, sig.Urbanization).Normalize(), nil
}

// climateBase builds the pre-normalization allocation. Callers normalize;
// the raw shares are kept separate so the monotonic response to harshness
// and urbanization is testable directly.
func climateBase(harshness, urbanization float64) WeightTable {
	return WeightTable{
		// Energy needs scale with climate harshness
		Electricity: 0.08 + 0.12*harshness,
		CookingFuel: 0.05 + 0.05*harshness,

		// Sanitation and water more critical in dense urban areas
		Sanitation:    0.08 + 0.07*urbanization,
		DrinkingWater: 0.08 + 0.07*urbanization,

		// Shelter quality matters more in harsh climates
		Flooring: 0.08 + 0.07*harshness,

		// Universal needs, held constant
		Nutrition:        0.15,
		ChildMortality:   0.15,
		YearsSchooling:   0.08,
		SchoolAttendance: 0.08,
		Assets:           0.07,
	}
}
