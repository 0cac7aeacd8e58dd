// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/jobrank/internal/bulktest"
	"github.com/okian/jobrank/internal/domain/model"
)

// BulkTestHandler handles validation batch requests.
type BulkTestHandler struct {
	deps Dependencies
}

// NewBulkTestHandler creates a new bulk test handler.
func NewBulkTestHandler(deps Dependencies) *BulkTestHandler {
	return &BulkTestHandler{deps: deps}
}

// bulkScoresRequest mirrors the schema for PUT /bulktest/jobs/{id}/scores.
type bulkScoresRequest struct {
	Scores map[string]int `json:"scores" validate:"required,min=1"`
}

// bulkRankRequest mirrors the schema for PUT /bulktest/jobs/{id}/rank.
type bulkRankRequest struct {
	RankID string `json:"rank_id" validate:"required"`
}

type uploadResponse struct {
	SessionID string   `json:"session_id"`
	Imported  int      `json:"imported"`
	Warnings  []string `json:"warnings,omitempty"`
}

// HandleUpload handles POST /bulktest/upload requests. The request body
// is the raw CSV; an optional file name rides in the X-File-Name header.
// A successful upload replaces the whole session batch and pins it to
// the scheme in effect at upload time.
func (h *BulkTestHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.bulktest_upload"
	snapshot := h.deps.Scheme().Snapshot()

	result, err := bulktest.ParseJobsCSV(r.Body, snapshot.Criteria, snapshot.Ranks)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_csv", WrapKind(op, ErrBadRequest, err))
		return
	}

	session := h.deps.BulkSession()
	session.Replace(result.Jobs, r.Header.Get("X-File-Name"), snapshot)

	writeJSON(w, http.StatusCreated, uploadResponse{
		SessionID: session.ID(),
		Imported:  len(result.Jobs),
		Warnings:  result.Warnings,
	})
}

// HandleListJobs handles GET /bulktest/jobs requests.
func (h *BulkTestHandler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.BulkSession().Jobs())
}

// HandleSetScores handles PUT /bulktest/jobs/{id}/scores requests.
func (h *BulkTestHandler) HandleSetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.bulktest_set_scores"
	var req bulkScoresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id := r.PathValue("id")
	if err := h.deps.BulkSession().SetScores(id, model.FactorScoreSet(req.Scores)); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	job, err := h.deps.BulkSession().Job(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleSetExpectedRank handles PUT /bulktest/jobs/{id}/rank requests.
func (h *BulkTestHandler) HandleSetExpectedRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.bulktest_set_rank"
	var req bulkRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	id := r.PathValue("id")
	if err := h.deps.BulkSession().SetExpectedRank(id, req.RankID); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	job, err := h.deps.BulkSession().Job(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleStats handles GET /bulktest/stats requests.
func (h *BulkTestHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.BulkSession().Stats())
}

// reportResponse carries the run summary plus one filtered, sorted view
// of the analyzed jobs.
type reportResponse struct {
	GeneratedAt string               `json:"generated_at"`
	Summary     bulktest.Summary     `json:"summary"`
	Jobs        []bulktest.ScoredJob `json:"jobs"`
	Incomplete  []bulktest.Job       `json:"incomplete,omitempty"`
}

// HandleReport handles GET /bulktest/report requests. Query parameters
// filter (all|matches|mismatches), sort (title|organization|model_score|match)
// and dir (asc|desc) shape the returned job list.
func (h *BulkTestHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.bulktest_report"
	report, err := h.deps.RunBulkReport(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "report_failed", WrapKind(op, ErrBadRequest, err))
		return
	}

	q := r.URL.Query()
	filter := bulktest.Filter(q.Get("filter"))
	if filter == "" {
		filter = bulktest.FilterAll
	}
	field := bulktest.SortField(q.Get("sort"))
	if field == "" {
		field = bulktest.SortByTitle
	}
	dir := bulktest.Direction(q.Get("dir"))
	if dir == "" {
		dir = bulktest.Ascending
	}

	writeJSON(w, http.StatusOK, reportResponse{
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Summary:     report.Summary,
		Jobs:        report.View(filter, field, dir),
		Incomplete:  report.Incomplete,
	})
}

// HandleReportCSV handles GET /bulktest/report.csv requests.
func (h *BulkTestHandler) HandleReportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.bulktest_export"
	report, err := h.deps.RunBulkReport(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, "report_failed", WrapKind(op, ErrBadRequest, err))
		return
	}

	sc := h.deps.BulkSession().Scheme()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bulk-test-report.csv"`)
	if err := bulktest.WriteReportCSV(w, report, sc.Criteria, sc.Ranks); err != nil {
		// Headers are already written; nothing useful left to send.
		return
	}
}

// HandleClear handles DELETE /bulktest/jobs requests.
func (h *BulkTestHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.deps.BulkSession().Clear()
	writeJSON(w, http.StatusOK, h.deps.BulkSession().Stats())
}
