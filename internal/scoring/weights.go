package scoring

import (
	"fmt"
	"math"
)

// sumTolerance is the floating-point slack allowed on a normalized table.
const sumTolerance = 1e-9

// WeightTable assigns a weight to each of the ten core indicators.
// A valid table is non-negative and sums to 1.0 (±1e-9). The closed struct
// shape guarantees every indicator has exactly one weight.
type WeightTable struct {
	Nutrition      float64 `json:"nutrition"`
	ChildMortality float64 `json:"child_mortality"`

	YearsSchooling   float64 `json:"years_schooling"`
	SchoolAttendance float64 `json:"school_attendance"`

	Electricity   float64 `json:"electricity"`
	Sanitation    float64 `json:"sanitation"`
	DrinkingWater float64 `json:"drinking_water"`
	Flooring      float64 `json:"flooring"`
	CookingFuel   float64 `json:"cooking_fuel"`
	Assets        float64 `json:"assets"`
}

// StandardWeights returns the fixed Alkire–Foster distribution: Health and
// Education 1/3 each (two indicators at 1/6 apiece), Living Standards 1/3
// across six indicators at 1/18 apiece.
func StandardWeights() WeightTable {
	return WeightTable{
		Nutrition:      1.0 / 6,
		ChildMortality: 1.0 / 6,

		YearsSchooling:   1.0 / 6,
		SchoolAttendance: 1.0 / 6,

		Electricity:   1.0 / 18,
		Sanitation:    1.0 / 18,
		DrinkingWater: 1.0 / 18,
		Flooring:      1.0 / 18,
		CookingFuel:   1.0 / 18,
		Assets:        1.0 / 18,
	}
}

// Sum returns the total of all weights.
func (w WeightTable) Sum() float64 {
	var total float64
	for _, v := range w.asList() {
		total += v
	}
	return total
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightTable) Validate() error {
	if math.Abs(w.Sum()-1.0) > sumTolerance {
		return fmt.Errorf("weights sum to %.12f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

// Normalize divides every weight by the table sum so the result sums to 1.0.
// A zero-sum table is returned unchanged.
func (w WeightTable) Normalize() WeightTable {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return WeightTable{
		Nutrition:        w.Nutrition / total,
		ChildMortality:   w.ChildMortality / total,
		YearsSchooling:   w.YearsSchooling / total,
		SchoolAttendance: w.SchoolAttendance / total,
		Electricity:      w.Electricity / total,
		Sanitation:       w.Sanitation / total,
		DrinkingWater:    w.DrinkingWater / total,
		Flooring:         w.Flooring / total,
		CookingFuel:      w.CookingFuel / total,
		Assets:           w.Assets / total,
	}
}

func (w WeightTable) asList() []float64 {
	return []float64{
		w.Nutrition, w.ChildMortality,
		w.YearsSchooling, w.SchoolAttendance,
		w.Electricity, w.Sanitation, w.DrinkingWater,
		w.Flooring, w.CookingFuel, w.Assets,
	}
}
