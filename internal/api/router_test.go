package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/climate"
	"github.com/dylanlt/poverty-explorer/internal/config"
	"github.com/dylanlt/poverty-explorer/internal/engine"
	"github.com/dylanlt/poverty-explorer/internal/indicator"
	"github.com/dylanlt/poverty-explorer/internal/scoring"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

// Mocks

type mockStore struct {
	mu         sync.Mutex
	cells      map[string]*store.CellRecord
	households map[string][]*store.HouseholdRecord
	runs       map[uuid.UUID]*store.Run
	summaries  []*store.CellSummary
}

func newMockStore() *mockStore {
	return &mockStore{
		cells:      make(map[string]*store.CellRecord),
		households: make(map[string][]*store.HouseholdRecord),
		runs:       make(map[uuid.UUID]*store.Run),
	}
}

func (m *mockStore) UpsertCell(_ context.Context, c *store.CellRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = time.Now()
	m.cells[c.ID] = c
	return nil
}
func (m *mockStore) GetCell(_ context.Context, id string) (*store.CellRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[id], nil
}
func (m *mockStore) ListCells(_ context.Context, _, _ int) ([]*store.CellRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.CellRecord
	for _, c := range m.cells {
		out = append(out, c)
	}
	return out, nil
}
func (m *mockStore) CreateHousehold(_ context.Context, h *store.HouseholdRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.households[h.CellID] = append(m.households[h.CellID], h)
	return nil
}
func (m *mockStore) GetHouseholdsForCell(_ context.Context, cellID string) ([]*store.HouseholdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.households[cellID], nil
}
func (m *mockStore) ListHouseholds(_ context.Context, _ store.HouseholdFilter) ([]*store.HouseholdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.HouseholdRecord
	for _, hs := range m.households {
		out = append(out, hs...)
	}
	return out, nil
}
func (m *mockStore) CreateRun(_ context.Context, r *store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.runs[r.ID] = r
	return nil
}
func (m *mockStore) GetRun(_ context.Context, id uuid.UUID) (*store.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}
func (m *mockStore) ListRuns(_ context.Context, _ int) ([]*store.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Run
	for _, r := range m.runs {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
func (m *mockStore) UpdateRun(_ context.Context, r *store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.runs[r.ID] = &cp
	return nil
}
func (m *mockStore) CreateCellSummary(_ context.Context, s *store.CellSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	m.summaries = append(m.summaries, s)
	return nil
}
func (m *mockStore) GetCellSummaries(_ context.Context, runID uuid.UUID) ([]*store.CellSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.CellSummary
	for _, s := range m.summaries {
		if s.RunID == runID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (m *mockStore) GetStats(_ context.Context) (*store.SurveyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, hs := range m.households {
		total += len(hs)
	}
	return &store.SurveyStats{TotalCells: len(m.cells), TotalHouseholds: total}, nil
}
func (m *mockStore) Close() error { return nil }

type mockEvents struct{}

func (m *mockEvents) Publish(context.Context, string, interface{}) error { return nil }
func (m *mockEvents) Close()                                             {}

type mockClimate struct {
	profile   cell.ClimateProfile
	factors   cell.ContextFactors
	series    *climate.CellSeries
	err       error
	seriesErr error
}

func (m *mockClimate) GetCellClimate(_ context.Context, cellID string) (*climate.CellClimate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &climate.CellClimate{CellID: cellID, Profile: m.profile}, nil
}
func (m *mockClimate) GetCellContext(_ context.Context, cellID string) (*climate.CellContext, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &climate.CellContext{CellID: cellID, Factors: m.factors}, nil
}
func (m *mockClimate) GetCellSeries(_ context.Context, cellID string) (*climate.CellSeries, error) {
	if m.seriesErr != nil {
		return nil, m.seriesErr
	}
	if m.series == nil {
		return nil, errors.New("series unavailable")
	}
	s := *m.series
	s.CellID = cellID
	return &s, nil
}

func testRouter(ms *mockStore) http.Handler {
	return testRouterWithClimate(ms, &mockClimate{})
}

func testRouterWithClimate(ms *mockStore, mc climate.Client) http.Handler {
	cfg, _ := config.Load("")
	cfg.Server.AdminToken = "test-token"
	cfg.Engine.Workers = 2
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := engine.New(ms, &mockEvents{}, cfg, logger)
	return NewRouter(ms, &mockEvents{}, mc, runner, cfg, logger)
}

func seedCell(ms *mockStore, id string, withClimate bool) {
	rec := &store.CellRecord{ID: id, Name: "Test Ward", Lat: 12, Lon: 34}
	if withClimate {
		rec.Climate = &cell.ClimateProfile{TempMin: 2, TempMax: 33, HeatingDegreeDays: 1500, CoolingDegreeDays: 400}
		rec.Context = &cell.ContextFactors{PopulationDensity: 3000, UrbanRuralIndex: 0.8}
	}
	_ = ms.UpsertCell(context.Background(), rec)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpoint(t *testing.T) {
	router := testRouter(newMockStore())

	rec := doRequest(t, router, "POST", "/api/v1/score", ScoreRequest{
		Deprivations: &indicator.Deprivations{
			Electricity: 1, Sanitation: 1, Flooring: 1, CookingFuel: 1,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result.Poor {
		t.Error("4/18 under standard weights should not be poor")
	}
	want := 4.0 / 18.0
	if diff := resp.Result.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected score %f, got %f", want, resp.Result.Score)
	}
}

func TestScoreEndpointWithSignal(t *testing.T) {
	router := testRouter(newMockStore())

	rec := doRequest(t, router, "POST", "/api/v1/score", ScoreRequest{
		Deprivations: &indicator.Deprivations{
			Electricity: 1, Sanitation: 1, Flooring: 1, CookingFuel: 1,
		},
		Signal: &cell.ContextSignal{Harshness: 1.0, Urbanization: 0.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Result.Poor {
		t.Error("expected poor under harsh-climate weights")
	}
}

func TestScoreEndpointRejectsBadInput(t *testing.T) {
	router := testRouter(newMockStore())

	rec := doRequest(t, router, "POST", "/api/v1/score", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty request: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, "POST", "/api/v1/score", ScoreRequest{
		Deprivations: &indicator.Deprivations{Electricity: 1.5},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range deprivation: expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, "POST", "/api/v1/score", ScoreRequest{
		Deprivations: &indicator.Deprivations{Electricity: 1},
		Signal:       &cell.ContextSignal{Harshness: 2.0},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range signal: expected 400, got %d", rec.Code)
	}
}

func TestCompareEndpointRequiresSignal(t *testing.T) {
	router := testRouter(newMockStore())

	rec := doRequest(t, router, "POST", "/api/v1/compare", ScoreRequest{
		Deprivations: &indicator.Deprivations{Electricity: 1},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without signal, got %d", rec.Code)
	}
}

func TestCompareEndpoint(t *testing.T) {
	router := testRouter(newMockStore())

	rec := doRequest(t, router, "POST", "/api/v1/compare", ScoreRequest{
		Deprivations: &indicator.Deprivations{
			Electricity: 1, Sanitation: 1, Flooring: 1, CookingFuel: 1,
		},
		Signal: &cell.ContextSignal{Harshness: 1.0, Urbanization: 0.0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var c scoring.Comparison
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatal(err)
	}
	if !c.Flipped {
		t.Error("expected a classification flip for this profile")
	}
}

func TestCellsEndpoints(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-a", true)
	seedCell(ms, "cell-b", false)
	router := testRouter(ms)

	rec := doRequest(t, router, "GET", "/api/v1/cells", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var cells []*store.CellRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &cells); err != nil {
		t.Fatal(err)
	}
	if len(cells) != 2 {
		t.Errorf("expected 2 cells, got %d", len(cells))
	}

	rec = doRequest(t, router, "GET", "/api/v1/cells/cell-a", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/v1/cells/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing cell: expected 404, got %d", rec.Code)
	}
}

func TestCellHouseholdsEndpoint(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-a", true)
	_ = ms.CreateHousehold(context.Background(), &store.HouseholdRecord{
		ID: "hh-1", CellID: "cell-a", Size: 3,
		Deprivations: indicator.Deprivations{Sanitation: 1},
	})
	_ = ms.CreateHousehold(context.Background(), &store.HouseholdRecord{
		ID: "hh-2", CellID: "cell-a", Size: 5,
		Deprivations: indicator.Deprivations{Electricity: 1},
		Enhanced:     &indicator.EnhancedDeprivations{Electricity: 1},
	})
	router := testRouter(ms)

	rec := doRequest(t, router, "GET", "/api/v1/cells/cell-a/households", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []HouseholdView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 households, got %d", len(views))
	}
	if views[0].ID != "hh-1" || views[0].Deprivations.Sanitation != 1 {
		t.Errorf("unexpected first household: %+v", views[0])
	}
	if views[0].Enhanced != nil {
		t.Error("core-instrument household should have no enhanced block")
	}
	if views[1].Enhanced == nil || views[1].Enhanced.Electricity != 1 {
		t.Errorf("expected enhanced block on hh-2, got %+v", views[1].Enhanced)
	}
}

func TestCellWeightsEndpoint(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-a", true)
	seedCell(ms, "cell-b", false)
	router := testRouter(ms)

	rec := doRequest(t, router, "GET", "/api/v1/cells/cell-a/weights", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp CellWeightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	sum := resp.Adjusted.Sum()
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("adjusted weights sum to %f", sum)
	}

	// No climate, no signal to derive.
	rec = doRequest(t, router, "GET", "/api/v1/cells/cell-b/weights", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for cell without climate, got %d", rec.Code)
	}
}

func TestRunsEndpoint(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-a", true)
	_ = ms.CreateHousehold(context.Background(), &store.HouseholdRecord{
		ID: "hh-1", CellID: "cell-a", Size: 4,
		Deprivations: indicator.Deprivations{Electricity: 1, Sanitation: 1},
	})
	router := testRouter(ms)

	rec := doRequest(t, router, "POST", "/api/v1/runs", CreateRunRequest{Cutoff: 0.33})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var created store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected run id in response")
	}

	// The computation is async; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	var run store.Run
	for {
		rec = doRequest(t, router, "GET", "/api/v1/runs/"+created.ID.String(), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get run: expected 200, got %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
			t.Fatal(err)
		}
		if run.Status == store.RunStatusCompleted || run.Status == store.RunStatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run did not finish in time, status %s", run.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if run.Status != store.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s (%s)", run.Status, run.Error)
	}
	if run.NumHouseholds != 1 {
		t.Errorf("expected 1 household, got %d", run.NumHouseholds)
	}

	rec = doRequest(t, router, "GET", "/api/v1/runs/"+created.ID.String()+"/cells", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("run cells: expected 200, got %d", rec.Code)
	}
	var summaries []*store.CellSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Errorf("expected 1 cell summary, got %d", len(summaries))
	}
}

func TestRunsEndpointBadID(t *testing.T) {
	router := testRouter(newMockStore())
	rec := doRequest(t, router, "GET", "/api/v1/runs/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	rec = doRequest(t, router, "GET", "/api/v1/runs/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSeedEndpointAuth(t *testing.T) {
	ms := newMockStore()
	router := testRouter(ms)

	rec := doRequest(t, router, "POST", "/api/v1/seed", SeedRequest{Cells: 2, HouseholdsPerCell: 3})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(SeedRequest{Cells: 2, HouseholdsPerCell: 3})
	req := httptest.NewRequest("POST", "/api/v1/seed", &buf)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d: %s", w.Code, w.Body.String())
	}
	var resp SeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Cells != 2 || resp.Households != 6 {
		t.Errorf("expected 2 cells and 6 households, got %+v", resp)
	}
}

func TestRefreshClimateEndpoint(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-bare", false)
	mc := &mockClimate{
		profile: cell.ClimateProfile{TempMin: -10, TempMax: 35, HeatingDegreeDays: 4000},
		factors: cell.ContextFactors{PopulationDensity: 2000, UrbanRuralIndex: 0.6},
	}
	router := testRouterWithClimate(ms, mc)

	req := httptest.NewRequest("POST", "/api/v1/cells/cell-bare/refresh-climate", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := ms.GetCell(context.Background(), "cell-bare")
	if got.Climate == nil || got.Climate.HeatingDegreeDays != 4000 {
		t.Errorf("climate not backfilled: %+v", got.Climate)
	}
	if got.Context == nil || got.Context.PopulationDensity != 2000 {
		t.Errorf("context not backfilled: %+v", got.Context)
	}

	// Unknown cell
	req = httptest.NewRequest("POST", "/api/v1/cells/missing/refresh-climate", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRefreshClimateDerivesProfileFromSeries(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-bare", false)
	// Upstream without a precomputed profile, raw daily means only.
	mc := &mockClimate{
		err: errors.New("profile endpoint unavailable"),
		series: &climate.CellSeries{
			DailyMeans:    []float64{8, 20, 30},
			Precipitation: 800,
			Humidity:      60,
		},
	}
	router := testRouterWithClimate(ms, mc)

	req := httptest.NewRequest("POST", "/api/v1/cells/cell-bare/refresh-climate", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := ms.GetCell(context.Background(), "cell-bare")
	if got.Climate == nil {
		t.Fatal("climate not derived from series")
	}
	if got.Climate.HeatingDegreeDays != 10 || got.Climate.CoolingDegreeDays != 6 {
		t.Errorf("degree days = %f/%f, expected 10/6",
			got.Climate.HeatingDegreeDays, got.Climate.CoolingDegreeDays)
	}
	if got.Climate.TempMin != 8 || got.Climate.TempMax != 30 {
		t.Errorf("temperature bounds = %f/%f, expected 8/30",
			got.Climate.TempMin, got.Climate.TempMax)
	}

	// Neither a profile nor a series upstream is a gateway failure.
	mc.series = nil
	req = httptest.NewRequest("POST", "/api/v1/cells/cell-bare/refresh-climate", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ms := newMockStore()
	seedCell(ms, "cell-a", true)
	router := testRouter(ms)

	rec := doRequest(t, router, "GET", "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats store.SurveyStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalCells != 1 {
		t.Errorf("expected 1 cell, got %d", stats.TotalCells)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/metrics", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", rec.Code)
	}
}
