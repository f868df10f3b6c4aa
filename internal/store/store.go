package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/indicator"
	"github.com/dylanlt/poverty-explorer/internal/scoring"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CellRecord is a persisted geographic cell plus its context data.
type CellRecord struct {
	ID   string  `json:"cell_id"`
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	Climate *cell.ClimateProfile `json:"climate,omitempty"`
	Context *cell.ContextFactors `json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HouseholdRecord is a persisted survey household. Enhanced is nil for
// households surveyed with the core ten-indicator instrument only.
type HouseholdRecord struct {
	ID     string `json:"household_id"`
	CellID string `json:"cell_id"`
	Size   int    `json:"size"`

	Deprivations indicator.Deprivations          `json:"deprivations"`
	Enhanced     *indicator.EnhancedDeprivations `json:"enhanced,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type HouseholdFilter struct {
	CellID string
	Limit  int
	Offset int
}

// Run is one population-wide comparison computation.
type Run struct {
	ID       uuid.UUID `json:"run_id"`
	Status   RunStatus `json:"status"`
	Cutoff   float64   `json:"cutoff"`
	Enhanced bool      `json:"enhanced"`

	Comparison *scoring.PopulationComparison `json:"comparison,omitempty"`
	Error      string                        `json:"error,omitempty"`

	NumCells      int `json:"num_cells"`
	NumHouseholds int `json:"num_households"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CellSummary is the per-cell slice of a run.
type CellSummary struct {
	ID     uuid.UUID `json:"id"`
	RunID  uuid.UUID `json:"run_id"`
	CellID string    `json:"cell_id"`

	Harshness    float64 `json:"harshness"`
	Urbanization float64 `json:"urbanization"`

	Comparison scoring.PopulationComparison `json:"comparison"`

	CreatedAt time.Time `json:"created_at"`
}

// SurveyStats is the aggregate shape of the stored survey data.
type SurveyStats struct {
	TotalCells          int `json:"total_cells"`
	CellsWithClimate    int `json:"cells_with_climate"`
	TotalHouseholds     int `json:"total_households"`
	EnhancedHouseholds  int `json:"enhanced_households"`
	CompletedRuns       int `json:"completed_runs"`
	LatestRunHouseholds int `json:"latest_run_households"`
}

type Store interface {
	UpsertCell(ctx context.Context, c *CellRecord) error
	GetCell(ctx context.Context, id string) (*CellRecord, error)
	// ListCells returns cells ordered by id; limit <= 0 means unbounded.
	ListCells(ctx context.Context, limit, offset int) ([]*CellRecord, error)

	CreateHousehold(ctx context.Context, h *HouseholdRecord) error
	GetHouseholdsForCell(ctx context.Context, cellID string) ([]*HouseholdRecord, error)
	ListHouseholds(ctx context.Context, filter HouseholdFilter) ([]*HouseholdRecord, error)

	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	UpdateRun(ctx context.Context, run *Run) error

	CreateCellSummary(ctx context.Context, s *CellSummary) error
	GetCellSummaries(ctx context.Context, runID uuid.UUID) ([]*CellSummary, error)

	GetStats(ctx context.Context) (*SurveyStats, error)

	Close() error
}
