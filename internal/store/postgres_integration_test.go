//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/indicator"
	"github.com/dylanlt/poverty-explorer/internal/scoring"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		// Truncate in dependency order
		_, _ = s.pool.Exec(ctx, "TRUNCATE run_cell_summaries CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE mpi_runs CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE survey_households CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE survey_cells CASCADE")
		s.Close()
	})

	return s
}

func TestUpsertAndGetCell(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	rec := &CellRecord{
		ID:   "cell-test-1",
		Name: "North Ward",
		Lat:  41.88,
		Lon:  -87.63,
		Climate: &cell.ClimateProfile{
			TempMin:           -8,
			TempMax:           29,
			HeatingDegreeDays: 3200,
			CoolingDegreeDays: 450,
		},
	}
	if err := s.UpsertCell(ctx, rec); err != nil {
		t.Fatalf("UpsertCell failed: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	got, err := s.GetCell(ctx, "cell-test-1")
	if err != nil {
		t.Fatalf("GetCell failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cell, got nil")
	}
	if got.Name != "North Ward" {
		t.Errorf("expected name 'North Ward', got '%s'", got.Name)
	}
	if got.Climate == nil || got.Climate.HeatingDegreeDays != 3200 {
		t.Errorf("climate did not round-trip: %+v", got.Climate)
	}

	// Upsert with context only must not clear the stored climate.
	rec2 := &CellRecord{
		ID: "cell-test-1", Name: "North Ward", Lat: 41.88, Lon: -87.63,
		Context: &cell.ContextFactors{PopulationDensity: 4500, UrbanRuralIndex: 0.9},
	}
	if err := s.UpsertCell(ctx, rec2); err != nil {
		t.Fatalf("second UpsertCell failed: %v", err)
	}
	got, err = s.GetCell(ctx, "cell-test-1")
	if err != nil {
		t.Fatalf("GetCell failed: %v", err)
	}
	if got.Climate == nil {
		t.Error("upsert without climate should keep the stored climate")
	}
	if got.Context == nil || got.Context.PopulationDensity != 4500 {
		t.Errorf("context did not round-trip: %+v", got.Context)
	}
}

func TestListCellsUnbounded(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		err := s.UpsertCell(ctx, &CellRecord{
			ID:  fmt.Sprintf("cell-%04d", i),
			Lat: -29.8, Lon: 31.0,
		})
		if err != nil {
			t.Fatalf("upsert cell %d: %v", i, err)
		}
	}

	// limit <= 0 must return the full population, not a page.
	all, err := s.ListCells(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 150 {
		t.Fatalf("expected all 150 cells, got %d", len(all))
	}

	page, err := s.ListCells(ctx, 10, 145)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 5 {
		t.Errorf("expected 5 cells in final page, got %d", len(page))
	}
}

func TestGetCellMissing(t *testing.T) {
	s := setupTestDB(t)
	got, err := s.GetCell(context.Background(), "no-such-cell")
	if err != nil {
		t.Fatalf("GetCell failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing cell, got %+v", got)
	}
}

func TestHouseholdRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.UpsertCell(ctx, &CellRecord{ID: "cell-hh", Lat: 0, Lon: 0}); err != nil {
		t.Fatalf("UpsertCell failed: %v", err)
	}

	h := &HouseholdRecord{
		ID:     "hh-test-1",
		CellID: "cell-hh",
		Size:   5,
		Deprivations: indicator.Deprivations{
			Electricity: 1, Sanitation: 1,
		},
	}
	if err := s.CreateHousehold(ctx, h); err != nil {
		t.Fatalf("CreateHousehold failed: %v", err)
	}

	list, err := s.GetHouseholdsForCell(ctx, "cell-hh")
	if err != nil {
		t.Fatalf("GetHouseholdsForCell failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 household, got %d", len(list))
	}
	if list[0].Deprivations.Electricity != 1 {
		t.Errorf("deprivations did not round-trip: %+v", list[0].Deprivations)
	}
	if list[0].Enhanced != nil {
		t.Error("expected nil enhanced block")
	}
}

func TestRunLifecycle(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	run := &Run{Status: RunStatusPending, Cutoff: 0.33}
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Fatal("expected non-nil run ID after create")
	}

	now := time.Now().UTC()
	run.Status = RunStatusCompleted
	run.NumCells = 3
	run.NumHouseholds = 150
	run.CompletedAt = &now
	run.Comparison = &scoring.PopulationComparison{Flips: 7}
	if err := s.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.Comparison == nil || got.Comparison.Flips != 7 {
		t.Errorf("comparison did not round-trip: %+v", got.Comparison)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}
