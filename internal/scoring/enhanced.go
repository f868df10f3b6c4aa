package scoring

import (
	"fmt"
	"math"

	"github.com/dylanlt/poverty-explorer/internal/cell"
)

// EnhancedWeightTable assigns weights to the fourteen enhanced-MPI entries:
// nine core scalars, the housing composite, and the four new dimensions.
type EnhancedWeightTable struct {
	Nutrition      float64 `json:"nutrition"`
	ChildMortality float64 `json:"child_mortality"`

	YearsSchooling   float64 `json:"years_schooling"`
	SchoolAttendance float64 `json:"school_attendance"`

	Electricity   float64 `json:"electricity"`
	Sanitation    float64 `json:"sanitation"`
	DrinkingWater float64 `json:"drinking_water"`
	CookingFuel   float64 `json:"cooking_fuel"`
	Assets        float64 `json:"assets"`

	Housing float64 `json:"housing"`

	Digital          float64 `json:"digital"`
	Transport        float64 `json:"transport"`
	EconomicSecurity float64 `json:"economic_security"`
	Environment      float64 `json:"environment"`
}

// EnhancedBaseWeights returns the context-free enhanced distribution:
// Health 15%, Education 15%, core Living Standards plus Housing 40%, and
// 30% across the four new dimensions.
func EnhancedBaseWeights() EnhancedWeightTable {
	return EnhancedWeightTable{
		Nutrition:      0.075,
		ChildMortality: 0.075,

		YearsSchooling:   0.075,
		SchoolAttendance: 0.075,

		Electricity:   0.06,
		Sanitation:    0.06,
		DrinkingWater: 0.06,
		CookingFuel:   0.05,
		Assets:        0.05,

		Housing: 0.12,

		Digital:          0.08,
		Transport:        0.08,
		EconomicSecurity: 0.07,
		Environment:      0.07,
	}
}

// ContextAdjustedWeights applies additive context adjustments to the
// enhanced base table, then renormalizes once. Rental-market tightness does
// not move the top-level table; it only shifts the housing sub-component
// split (see HousingSubWeights).
func ContextAdjustedWeights(sig *cell.ContextSignal) (EnhancedWeightTable, error) {
	if sig == nil {
		return EnhancedWeightTable{}, ErrMissingContext
	}

	w := EnhancedBaseWeights()
	h := sig.Harshness
	u := sig.Urbanization

	w.Electricity += 0.04 * h
	w.CookingFuel += 0.02 * h
	w.Housing += 0.03 * h

	w.Sanitation += 0.04 * u
	w.DrinkingWater += 0.04 * u

	w.Transport += 0.06 * sig.SprawlOrDefault()
	w.Digital += 0.05 * sig.DigitalIntensityOrDefault()

	return w.Normalize(), nil
}

// Sum returns the total of all weights.
func (w EnhancedWeightTable) Sum() float64 {
	var total float64
	for _, v := range w.asList() {
		total += v
	}
	return total
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w EnhancedWeightTable) Validate() error {
	if math.Abs(w.Sum()-1.0) > sumTolerance {
		return fmt.Errorf("enhanced weights sum to %.12f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative enhanced weight: %f", v)
		}
	}
	return nil
}

// Normalize divides every weight by the table sum so the result sums to 1.0.
// A zero-sum table is returned unchanged.
func (w EnhancedWeightTable) Normalize() EnhancedWeightTable {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return EnhancedWeightTable{
		Nutrition:        w.Nutrition / total,
		ChildMortality:   w.ChildMortality / total,
		YearsSchooling:   w.YearsSchooling / total,
		SchoolAttendance: w.SchoolAttendance / total,
		Electricity:      w.Electricity / total,
		Sanitation:       w.Sanitation / total,
		DrinkingWater:    w.DrinkingWater / total,
		CookingFuel:      w.CookingFuel / total,
		Assets:           w.Assets / total,
		Housing:          w.Housing / total,
		Digital:          w.Digital / total,
		Transport:        w.Transport / total,
		EconomicSecurity: w.EconomicSecurity / total,
		Environment:      w.Environment / total,
	}
}

func (w EnhancedWeightTable) asList() []float64 {
	return []float64{
		w.Nutrition, w.ChildMortality,
		w.YearsSchooling, w.SchoolAttendance,
		w.Electricity, w.Sanitation, w.DrinkingWater, w.CookingFuel, w.Assets,
		w.Housing,
		w.Digital, w.Transport, w.EconomicSecurity, w.Environment,
	}
}

// HousingWeights splits the housing composite into its three components.
// Always normalized to sum 1.0.
type HousingWeights struct {
	Structure float64 `json:"structure"`
	Tenure    float64 `json:"tenure"`
	Cost      float64 `json:"cost"`
}

// DefaultHousingWeights returns the context-free structure 40% / tenure 30% /
// cost 30% split.
func DefaultHousingWeights() HousingWeights {
	return HousingWeights{Structure: 0.40, Tenure: 0.30, Cost: 0.30}
}

// HousingSubWeights shifts the housing split with local conditions:
// structure matters more in harsh climates, cost burden more in tight
// rental markets.
func HousingSubWeights(harshness, rentalTightness float64) HousingWeights {
	w := DefaultHousingWeights()
	w.Structure += 0.10 * harshness
	w.Cost += 0.15 * rentalTightness

	total := w.Structure + w.Tenure + w.Cost
	return HousingWeights{
		Structure: w.Structure / total,
		Tenure:    w.Tenure / total,
		Cost:      w.Cost / total,
	}
}

// Sum returns the total of the three sub-weights.
func (w HousingWeights) Sum() float64 {
	return w.Structure + w.Tenure + w.Cost
}
