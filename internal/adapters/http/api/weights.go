// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/jobrank/internal/domain/model"
)

// WeightsHandler handles active weight set requests.
type WeightsHandler struct {
	deps Dependencies
}

// NewWeightsHandler creates a new weights handler.
func NewWeightsHandler(deps Dependencies) *WeightsHandler {
	return &WeightsHandler{deps: deps}
}

// weightsRequest mirrors the schema for PUT /weights. Weights use the
// fractional convention and must sum to 1.0.
type weightsRequest struct {
	Weights map[string]float64 `json:"weights" validate:"required,min=1"`
}

type weightsResponse struct {
	Weights map[string]float64 `json:"weights"`
}

// HandleGetWeights handles GET /weights requests.
func (h *WeightsHandler) HandleGetWeights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, weightsResponse{Weights: h.deps.Weights()})
}

// HandleSetWeights handles PUT /weights requests.
func (h *WeightsHandler) HandleSetWeights(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_weights"
	var req weightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.SetWeights(r.Context(), model.WeightSet(req.Weights)); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_weights", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, weightsResponse{Weights: h.deps.Weights()})
}
