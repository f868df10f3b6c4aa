package events

import "time"

type RunStartedEvent struct {
	RunID    string  `json:"run_id"`
	Cutoff   float64 `json:"cutoff"`
	Enhanced bool    `json:"enhanced"`
}

type RunCompletedEvent struct {
	RunID         string  `json:"run_id"`
	NumCells      int     `json:"num_cells"`
	NumHouseholds int     `json:"num_households"`
	StandardMPI   float64 `json:"standard_mpi"`
	AdjustedMPI   float64 `json:"adjusted_mpi"`
	Flips         int     `json:"classification_flips"`
	DurationMs    int64   `json:"duration_ms"`
}

type RunFailedEvent struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

type CellScoredEvent struct {
	RunID        string  `json:"run_id"`
	CellID       string  `json:"cell_id"`
	Harshness    float64 `json:"harshness"`
	Urbanization float64 `json:"urbanization"`
	StandardMPI  float64 `json:"standard_mpi"`
	AdjustedMPI  float64 `json:"adjusted_mpi"`
	Flips        int     `json:"classification_flips"`
}

// CellFlippedEvent is emitted alongside CellScoredEvent for cells where the
// weight regime change reclassified at least one household.
type CellFlippedEvent struct {
	RunID              string `json:"run_id"`
	CellID             string `json:"cell_id"`
	ReclassifiedToPoor int    `json:"reclassified_to_poor"`
	ReclassifiedFrom   int    `json:"reclassified_from_poor"`
}

type SurveySeededEvent struct {
	Cells      int       `json:"cells"`
	Households int       `json:"households"`
	Seed       int64     `json:"seed"`
	Enhanced   bool      `json:"enhanced"`
	Timestamp  time.Time `json:"timestamp"`
}
