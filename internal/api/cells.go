package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/indicator"
	"github.com/dylanlt/poverty-explorer/internal/scoring"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

type CellsHandler struct {
	store store.Store
}

func NewCellsHandler(s store.Store) *CellsHandler {
	return &CellsHandler{store: s}
}

func (h *CellsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 100
	}

	cells, err := h.store.ListCells(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if cells == nil {
		cells = []*store.CellRecord{}
	}
	writeJSON(w, http.StatusOK, cells)
}

func (h *CellsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CellWeightsResponse shows the derived signal and the weight tables that
// apply to households in the cell.
type CellWeightsResponse struct {
	CellID   string                      `json:"cell_id"`
	Signal   cell.ContextSignal          `json:"context_signal"`
	Standard scoring.WeightTable         `json:"standard_weights"`
	Adjusted scoring.WeightTable         `json:"adjusted_weights"`
	Enhanced scoring.EnhancedWeightTable `json:"enhanced_weights"`
	Housing  scoring.HousingWeights      `json:"housing_sub_weights"`
}

// Weights derives the cell's context signal and returns every weight regime
// for it. Cells without climate data get 422: there is no signal to derive.
func (h *CellsHandler) Weights(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	geo := &cell.Cell{ID: rec.ID, Lat: rec.Lat, Lon: rec.Lon, Climate: rec.Climate, Context: rec.Context}
	sig, err := geo.Signal()
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	adjusted, err := scoring.ClimateAdjustedWeights(sig)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	enhanced, err := scoring.ContextAdjustedWeights(sig)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, CellWeightsResponse{
		CellID:   rec.ID,
		Signal:   *sig,
		Standard: scoring.StandardWeights(),
		Adjusted: adjusted,
		Enhanced: enhanced,
		Housing:  scoring.HousingSubWeights(sig.Harshness, sig.RentalTightnessOrDefault()),
	})
}

// HouseholdView is the survey-instrument shape served by the API: the core
// household plus the enhanced block when the extended instrument was used.
type HouseholdView struct {
	indicator.Household
	Enhanced *indicator.EnhancedDeprivations `json:"enhanced_deprivations,omitempty"`
}

func (h *CellsHandler) Households(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	households, err := h.store.GetHouseholdsForCell(r.Context(), rec.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	views := make([]HouseholdView, 0, len(households))
	for _, hh := range households {
		views = append(views, HouseholdView{
			Household: indicator.Household{
				ID:           hh.ID,
				CellID:       hh.CellID,
				Size:         hh.Size,
				Deprivations: hh.Deprivations,
			},
			Enhanced: hh.Enhanced,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *CellsHandler) lookup(w http.ResponseWriter, r *http.Request) (*store.CellRecord, bool) {
	id := chi.URLParam(r, "id")
	rec, err := h.store.GetCell(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cell not found"})
		return nil, false
	}
	return rec, true
}
