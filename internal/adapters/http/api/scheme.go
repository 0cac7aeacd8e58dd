// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/jobrank/internal/domain/scheme"
)

// SchemeHandler handles scoring scheme administration requests.
type SchemeHandler struct {
	deps Dependencies
}

// NewSchemeHandler creates a new scheme handler.
func NewSchemeHandler(deps Dependencies) *SchemeHandler {
	return &SchemeHandler{deps: deps}
}

// criterionRequest mirrors the schema for POST /scheme/criteria.
type criterionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// criterionUpdateRequest mirrors the schema for PATCH /scheme/criteria/{id}.
// Absent fields are left unchanged.
type criterionUpdateRequest struct {
	Name              *string        `json:"name,omitempty"`
	Description       *string        `json:"description,omitempty"`
	DefaultWeight     *float64       `json:"default_weight,omitempty"`
	Order             *int           `json:"order,omitempty"`
	ScaleDescriptions map[int]string `json:"scale_descriptions,omitempty"`
}

// rankRequest mirrors the schema for POST /scheme/ranks.
type rankRequest struct {
	Name     string  `json:"name" validate:"required"`
	MinScore float64 `json:"min_score" validate:"min=1,max=5"`
	MaxScore float64 `json:"max_score" validate:"min=1,max=5"`
	Color    string  `json:"color,omitempty"`
}

// rankUpdateRequest mirrors the schema for PATCH /scheme/ranks/{id}.
type rankUpdateRequest struct {
	Name     *string  `json:"name,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Order    *int     `json:"order,omitempty"`
}

// HandleGetScheme handles GET /scheme requests.
func (h *SchemeHandler) HandleGetScheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Scheme().Snapshot())
}

// HandleImportScheme handles PUT /scheme requests. The request body is an
// exported scheme snapshot; the import is fully revalidated and replaces
// the active scheme atomically.
func (h *SchemeHandler) HandleImportScheme(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_scheme"
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.Scheme().ImportJSON(data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scheme", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scheme().Snapshot())
}

// HandleAddCriterion handles POST /scheme/criteria requests.
func (h *SchemeHandler) HandleAddCriterion(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_criterion"
	var req criterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	created, err := h.deps.Scheme().AddCriterion(req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scheme", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateCriterion handles PATCH /scheme/criteria/{id} requests.
func (h *SchemeHandler) HandleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_criterion"
	var req criterionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err := h.deps.Scheme().UpdateCriterion(r.PathValue("id"), scheme.CriterionUpdate{
		Name:              req.Name,
		Description:       req.Description,
		DefaultWeight:     req.DefaultWeight,
		Order:             req.Order,
		ScaleDescriptions: req.ScaleDescriptions,
	})
	if err != nil {
		h.writeSchemeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scheme().Snapshot())
}

// HandleRemoveCriterion handles DELETE /scheme/criteria/{id} requests.
func (h *SchemeHandler) HandleRemoveCriterion(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_criterion"
	if err := h.deps.Scheme().RemoveCriterion(r.PathValue("id")); err != nil {
		if errors.Is(err, scheme.ErrNotRemovable) {
			writeError(w, http.StatusForbidden, "not_removable", err)
			return
		}
		h.writeSchemeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scheme().Snapshot())
}

// HandleAddRank handles POST /scheme/ranks requests.
func (h *SchemeHandler) HandleAddRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_rank"
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	created, err := h.deps.Scheme().AddRank(req.Name, req.MinScore, req.MaxScore, req.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scheme", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateRank handles PATCH /scheme/ranks/{id} requests.
func (h *SchemeHandler) HandleUpdateRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_rank"
	var req rankUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err := h.deps.Scheme().UpdateRank(r.PathValue("id"), scheme.RankUpdate{
		Name:     req.Name,
		MinScore: req.MinScore,
		MaxScore: req.MaxScore,
		Color:    req.Color,
		Order:    req.Order,
	})
	if err != nil {
		h.writeSchemeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scheme().Snapshot())
}

// HandleRemoveRank handles DELETE /scheme/ranks/{id} requests.
func (h *SchemeHandler) HandleRemoveRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_rank"
	if err := h.deps.Scheme().RemoveRank(r.PathValue("id")); err != nil {
		h.writeSchemeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scheme().Snapshot())
}

func (h *SchemeHandler) writeSchemeError(w http.ResponseWriter, op string, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusBadRequest, "invalid_scheme", WrapKind(op, ErrBadRequest, err))
}
