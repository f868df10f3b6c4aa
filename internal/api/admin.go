package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dylanlt/poverty-explorer/internal/climate"
	"github.com/dylanlt/poverty-explorer/internal/config"
	"github.com/dylanlt/poverty-explorer/internal/events"
	"github.com/dylanlt/poverty-explorer/internal/store"
	"github.com/dylanlt/poverty-explorer/internal/synth"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	store   store.Store
	events  events.Client
	climate climate.Client
	cfg     *config.Config
}

func NewAdminHandler(s store.Store, ev events.Client, cl climate.Client, cfg *config.Config) *AdminHandler {
	return &AdminHandler{store: s, events: ev, climate: cl, cfg: cfg}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type SeedRequest struct {
	Seed              *int64 `json:"seed,omitempty"`
	Cells             int    `json:"cells,omitempty"`
	HouseholdsPerCell int    `json:"households_per_cell,omitempty"`
	Enhanced          bool   `json:"enhanced,omitempty"`
}

type SeedResponse struct {
	Cells      int   `json:"cells"`
	Households int   `json:"households"`
	Seed       int64 `json:"seed"`
	Enhanced   bool  `json:"enhanced"`
}

// Seed generates and persists a synthetic survey. Existing cells are
// upserted; households accumulate, so reseeding grows the population.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req SeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	seed := h.cfg.Survey.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	numCells := req.Cells
	if numCells <= 0 {
		numCells = h.cfg.Survey.Cells
	}
	perCell := req.HouseholdsPerCell
	if perCell <= 0 {
		perCell = h.cfg.Survey.HouseholdsPerCell
	}

	g := synth.NewGenerator(seed)
	cells := g.Cells(numCells)
	var households []*store.HouseholdRecord
	if req.Enhanced {
		households = g.EnhancedHouseholds(cells, perCell)
	} else {
		households = g.Households(cells, perCell)
	}

	ctx := r.Context()
	for _, c := range cells {
		if err := h.store.UpsertCell(ctx, c); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	for _, hh := range households {
		if err := h.store.CreateHousehold(ctx, hh); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	if h.events != nil {
		_ = h.events.Publish(ctx, events.SubjectSurveySeeded, events.SurveySeededEvent{
			Cells:      len(cells),
			Households: len(households),
			Seed:       seed,
			Enhanced:   req.Enhanced,
			Timestamp:  time.Now().UTC(),
		})
	}

	writeJSON(w, http.StatusCreated, SeedResponse{
		Cells:      len(cells),
		Households: len(households),
		Seed:       seed,
		Enhanced:   req.Enhanced,
	})
}

// RefreshClimate backfills one cell's climate profile and context factors
// from the upstream climate service.
func (h *AdminHandler) RefreshClimate(w http.ResponseWriter, r *http.Request) {
	if h.climate == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "climate service not configured"})
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := h.store.GetCell(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cell not found"})
		return
	}

	cc, err := h.climate.GetCellClimate(r.Context(), id)
	if err == nil {
		rec.Climate = &cc.Profile
	} else {
		// Some upstreams serve only raw reanalysis series; derive the
		// profile from the daily means.
		series, serr := h.climate.GetCellSeries(r.Context(), id)
		if serr != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		profile, perr := climate.ProfileFromSeries(series.DailyMeans, series.Precipitation, series.Humidity)
		if perr != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": perr.Error()})
			return
		}
		rec.Climate = profile
	}

	// Context is optional enrichment; a failure here is not fatal.
	if cx, err := h.climate.GetCellContext(r.Context(), id); err == nil {
		rec.Context = &cx.Factors
	}

	if err := h.store.UpsertCell(r.Context(), rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
