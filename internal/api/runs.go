package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dylanlt/poverty-explorer/internal/engine"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

type RunsHandler struct {
	store  store.Store
	runner *engine.Runner

	defaultCutoff   float64
	defaultEnhanced bool
}

func NewRunsHandler(s store.Store, runner *engine.Runner, defaultCutoff float64, defaultEnhanced bool) *RunsHandler {
	return &RunsHandler{
		store:           s,
		runner:          runner,
		defaultCutoff:   defaultCutoff,
		defaultEnhanced: defaultEnhanced,
	}
}

type CreateRunRequest struct {
	Cutoff   float64 `json:"cutoff,omitempty"`
	Enhanced *bool   `json:"enhanced,omitempty"`
}

// Create records a new run and kicks off the computation in the background.
// The response carries the pending run; poll GET /runs/{id} for the result.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if r.Body != nil {
		// An empty body means defaults.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}
	if req.Cutoff < 0 || req.Cutoff > 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cutoff must be in [0,1]"})
		return
	}

	run := &store.Run{
		Status:   store.RunStatusPending,
		Cutoff:   h.defaultCutoff,
		Enhanced: h.defaultEnhanced,
	}
	if req.Cutoff > 0 {
		run.Cutoff = req.Cutoff
	}
	if req.Enhanced != nil {
		run.Enhanced = *req.Enhanced
	}

	if err := h.store.CreateRun(r.Context(), run); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Snapshot before the background computation starts mutating the run.
	accepted := *run
	go func() {
		// Detached from the request context; the run outlives the response.
		_ = h.runner.Execute(context.Background(), run)
	}()

	writeJSON(w, http.StatusAccepted, accepted)
}

func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *RunsHandler) CellSummaries(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	summaries, err := h.store.GetCellSummaries(r.Context(), run.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []*store.CellSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *RunsHandler) lookup(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return nil, false
	}
	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if run == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return nil, false
	}
	return run, true
}
