package scoring

import "github.com/dylanlt/poverty-explorer/internal/indicator"

// Comparison pairs the outcomes of two weight regimes for one household.
// Flipped is true iff the two classifications disagree; the count of flips
// across a population is the central empirical question the engine answers.
type Comparison struct {
	Standard   Result  `json:"standard"`
	Adjusted   Result  `json:"adjusted"`
	ScoreDelta float64 `json:"score_delta"`
	Flipped    bool    `json:"classification_flipped"`
}

// Compare scores one household under two weight tables and reports the
// delta. Purely compositional over Score; no internal state.
func Compare(d indicator.Deprivations, standard, adjusted WeightTable, cutoff float64) Comparison {
	a := Score(d, standard, cutoff)
	b := Score(d, adjusted, cutoff)
	return pair(a, b)
}

// CompareEnhanced scores one enhanced household under two enhanced weight
// tables, applying the housing sub-weight split to the adjusted regime only.
func CompareEnhanced(d indicator.EnhancedDeprivations, standard, adjusted EnhancedWeightTable, subWeights *HousingWeights, cutoff float64) Comparison {
	a := ScoreEnhanced(d, standard, nil, cutoff)
	b := ScoreEnhanced(d, adjusted, subWeights, cutoff)
	return pair(a, b)
}

func pair(a, b Result) Comparison {
	return Comparison{
		Standard:   a,
		Adjusted:   b,
		ScoreDelta: b.Score - a.Score,
		Flipped:    a.Poor != b.Poor,
	}
}

// PopulationComparison aggregates both regimes over the same population and
// counts reclassifications in each direction.
type PopulationComparison struct {
	Standard PopulationStats `json:"standard"`
	Adjusted PopulationStats `json:"adjusted"`

	Flips                int `json:"classification_flips"`
	ReclassifiedToPoor   int `json:"reclassified_to_poor"`
	ReclassifiedFromPoor int `json:"reclassified_from_poor"`
}

// AggregateComparisons reduces paired per-household results into a
// population-level comparison. Empty input yields the zero-valued result.
func AggregateComparisons(comparisons []Comparison) PopulationComparison {
	standard := make([]Result, len(comparisons))
	adjusted := make([]Result, len(comparisons))

	var toPoor, fromPoor int
	for i, c := range comparisons {
		standard[i] = c.Standard
		adjusted[i] = c.Adjusted
		if c.Flipped {
			if c.Adjusted.Poor {
				toPoor++
			} else {
				fromPoor++
			}
		}
	}

	return PopulationComparison{
		Standard:             Aggregate(standard),
		Adjusted:             Aggregate(adjusted),
		Flips:                toPoor + fromPoor,
		ReclassifiedToPoor:   toPoor,
		ReclassifiedFromPoor: fromPoor,
	}
}
