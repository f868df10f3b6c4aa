package scoring

import (
	"math"

	"github.com/dylanlt/poverty-explorer/internal/indicator"
)

// DefaultCutoff is the canonical Alkire–Foster poverty threshold.
const DefaultCutoff = 0.33

// Result is the scoring output for one household under one weight regime.
type Result struct {
	Score     float64 `json:"deprivation_score"`
	Poor      bool    `json:"is_poor"`
	Intensity float64 `json:"intensity"`
}

// Score computes the weighted deprivation score for a household's core
// indicators and classifies it against the cutoff. A cutoff <= 0 falls back
// to DefaultCutoff.
//
// Weight tables are expected to sum to 1.0; a table with a bad sum is
// renormalized here rather than rejected, so a caller-supplied custom table
// can never push scores outside [0,1].
func Score(d indicator.Deprivations, w WeightTable, cutoff float64) Result {
	w = ensureNormalized(w)

	score := w.Nutrition*d.Nutrition +
		w.ChildMortality*d.ChildMortality +
		w.YearsSchooling*d.YearsSchooling +
		w.SchoolAttendance*d.SchoolAttendance +
		w.Electricity*d.Electricity +
		w.Sanitation*d.Sanitation +
		w.DrinkingWater*d.DrinkingWater +
		w.Flooring*d.Flooring +
		w.CookingFuel*d.CookingFuel +
		w.Assets*d.Assets

	return classify(score, cutoff)
}

// ScoreEnhanced computes the weighted deprivation score over the enhanced
// indicator set. The housing composite uses subWeights when given, the
// default 0.4/0.3/0.3 split otherwise; the remaining composites use their
// fixed internal combinations.
func ScoreEnhanced(d indicator.EnhancedDeprivations, w EnhancedWeightTable, subWeights *HousingWeights, cutoff float64) Result {
	w = ensureNormalizedEnhanced(w)

	hw := DefaultHousingWeights()
	if subWeights != nil {
		hw = *subWeights
	}

	score := w.Nutrition*d.Nutrition +
		w.ChildMortality*d.ChildMortality +
		w.YearsSchooling*d.YearsSchooling +
		w.SchoolAttendance*d.SchoolAttendance +
		w.Electricity*d.Electricity +
		w.Sanitation*d.Sanitation +
		w.DrinkingWater*d.DrinkingWater +
		w.CookingFuel*d.CookingFuel +
		w.Assets*d.Assets

	housing := hw.Structure*d.Housing.StructureQuality +
		hw.Tenure*d.Housing.TenureSecurity +
		hw.Cost*d.Housing.CostBurden
	score += w.Housing * housing

	score += w.Digital * d.Digital.CompositeScore()
	score += w.Transport * d.Transport.CompositeScore()
	score += w.EconomicSecurity * d.Economic.CompositeScore()
	score += w.Environment * d.Environment.CompositeScore()

	return classify(score, cutoff)
}

func classify(score, cutoff float64) Result {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	r := Result{Score: score, Poor: score >= cutoff}
	if r.Poor {
		r.Intensity = score
	}
	return r
}

func ensureNormalized(w WeightTable) WeightTable {
	if math.Abs(w.Sum()-1.0) > sumTolerance {
		return w.Normalize()
	}
	return w
}

func ensureNormalizedEnhanced(w EnhancedWeightTable) EnhancedWeightTable {
	if math.Abs(w.Sum()-1.0) > sumTolerance {
		return w.Normalize()
	}
	return w
}
