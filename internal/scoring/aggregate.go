package scoring

// PopulationStats is the Alkire–Foster decomposition over a household
// collection: MPI = headcount ratio × average intensity among the poor.
type PopulationStats struct {
	MPI            float64 `json:"mpi"`
	HeadcountRatio float64 `json:"headcount_ratio"`
	Intensity      float64 `json:"intensity"`
	NumPoor        int     `json:"num_poor"`
	Total          int     `json:"total_population"`
	AvgScore       float64 `json:"avg_deprivation_score"`
}

// Aggregate reduces per-household results into population statistics.
// An empty collection yields the zero-valued result by convention.
// The reduction is a plain sum, so partial aggregates computed in parallel
// can be merged before the final division.
func Aggregate(results []Result) PopulationStats {
	if len(results) == 0 {
		return PopulationStats{}
	}

	var numPoor int
	var scoreSum, intensitySum float64
	for _, r := range results {
		scoreSum += r.Score
		if r.Poor {
			numPoor++
			intensitySum += r.Intensity
		}
	}

	total := len(results)
	stats := PopulationStats{
		NumPoor:        numPoor,
		Total:          total,
		HeadcountRatio: float64(numPoor) / float64(total),
		AvgScore:       scoreSum / float64(total),
	}
	if numPoor > 0 {
		stats.Intensity = intensitySum / float64(numPoor)
	}
	stats.MPI = stats.HeadcountRatio * stats.Intensity
	return stats
}
