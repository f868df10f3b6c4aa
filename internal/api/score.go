package api

import (
	"encoding/json"
	"net/http"

	"github.com/dylanlt/poverty-explorer/internal/cell"
	"github.com/dylanlt/poverty-explorer/internal/indicator"
	"github.com/dylanlt/poverty-explorer/internal/scoring"
)

// ScoreHandler serves stateless single-household scoring and comparison.
type ScoreHandler struct {
	defaultCutoff float64
}

func NewScoreHandler(defaultCutoff float64) *ScoreHandler {
	if defaultCutoff <= 0 {
		defaultCutoff = scoring.DefaultCutoff
	}
	return &ScoreHandler{defaultCutoff: defaultCutoff}
}

type ScoreRequest struct {
	Deprivations *indicator.Deprivations         `json:"deprivations,omitempty"`
	Enhanced     *indicator.EnhancedDeprivations `json:"enhanced_deprivations,omitempty"`
	Signal       *cell.ContextSignal             `json:"context_signal,omitempty"`
	Weights      *scoring.WeightTable            `json:"weights,omitempty"`
	Cutoff       float64                         `json:"cutoff,omitempty"`
}

type ScoreResponse struct {
	Result  scoring.Result      `json:"result"`
	Weights interface{}         `json:"weights"`
	Signal  *cell.ContextSignal `json:"context_signal,omitempty"`
}

// Score evaluates one household under a single weight regime: standard
// weights by default, context-adjusted when a signal is given, or a custom
// table when one is posted.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	cutoff := req.Cutoff
	if cutoff <= 0 {
		cutoff = h.defaultCutoff
	}

	if req.Enhanced != nil {
		if err := req.Enhanced.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		weights := scoring.EnhancedBaseWeights()
		var subWeights *scoring.HousingWeights
		if req.Signal != nil {
			var err error
			if weights, err = scoring.ContextAdjustedWeights(req.Signal); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			sw := scoring.HousingSubWeights(req.Signal.Harshness, req.Signal.RentalTightnessOrDefault())
			subWeights = &sw
		}
		result := scoring.ScoreEnhanced(*req.Enhanced, weights, subWeights, cutoff)
		writeJSON(w, http.StatusOK, ScoreResponse{Result: result, Weights: weights, Signal: req.Signal})
		return
	}

	if err := req.Deprivations.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	weights := scoring.StandardWeights()
	switch {
	case req.Weights != nil:
		if err := req.Weights.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		weights = *req.Weights
	case req.Signal != nil:
		var err error
		if weights, err = scoring.ClimateAdjustedWeights(req.Signal); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	result := scoring.Score(*req.Deprivations, weights, cutoff)
	writeJSON(w, http.StatusOK, ScoreResponse{Result: result, Weights: weights, Signal: req.Signal})
}

// Compare evaluates one household under standard and context-adjusted
// weights side by side. The context signal is required: without it there is
// no adjusted regime to compare against.
func (h *ScoreHandler) Compare(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Signal == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "context_signal required"})
		return
	}
	if err := req.Signal.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	cutoff := req.Cutoff
	if cutoff <= 0 {
		cutoff = h.defaultCutoff
	}

	if req.Enhanced != nil {
		if err := req.Enhanced.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		adjusted, err := scoring.ContextAdjustedWeights(req.Signal)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		subWeights := scoring.HousingSubWeights(req.Signal.Harshness, req.Signal.RentalTightnessOrDefault())
		comparison := scoring.CompareEnhanced(*req.Enhanced, scoring.EnhancedBaseWeights(), adjusted, &subWeights, cutoff)
		writeJSON(w, http.StatusOK, comparison)
		return
	}

	if err := req.Deprivations.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	adjusted, err := scoring.ClimateAdjustedWeights(req.Signal)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	comparison := scoring.Compare(*req.Deprivations, scoring.StandardWeights(), adjusted, cutoff)
	writeJSON(w, http.StatusOK, comparison)
}

func (h *ScoreHandler) decode(w http.ResponseWriter, r *http.Request) (*ScoreRequest, bool) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return nil, false
	}
	if req.Deprivations == nil && req.Enhanced == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deprivations or enhanced_deprivations required"})
		return nil, false
	}
	if req.Signal != nil {
		if err := req.Signal.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return nil, false
		}
	}
	return &req, true
}
