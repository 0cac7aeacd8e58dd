// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/okian/jobrank/internal/adapters/repository"
	"github.com/okian/jobrank/internal/domain/model"
)

// JobsHandler handles job tracking and scoring requests.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// createJobRequest mirrors the schema for POST /jobs.
type createJobRequest struct {
	Title      string `json:"title" validate:"required"`
	ClientName string `json:"client_name" validate:"required"`
	OpenedAt   string `json:"opened_at,omitempty"`
}

// scoresRequest mirrors the schema for POST /jobs/{id}/scores.
type scoresRequest struct {
	RaterID     string         `json:"rater_id" validate:"required"`
	RaterRole   string         `json:"rater_role,omitempty"`
	ScoringDate string         `json:"scoring_date,omitempty"`
	Scores      map[string]int `json:"scores" validate:"required,min=1"`
}

// breakdownRequest mirrors the schema for POST /breakdown.
type breakdownRequest struct {
	Scores map[string]int `json:"scores" validate:"required,min=1"`
}

// jobResponse is the read shape of a tracked job.
type jobResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ClientName string `json:"client_name"`
	OpenedAt   string `json:"opened_at"`
	DaysOpen   int    `json:"days_open"`
}

// rankingResponse is the read shape of a job ranking.
type rankingResponse struct {
	ID             string             `json:"id"`
	JobID          string             `json:"job_id"`
	ScoringDate    string             `json:"scoring_date"`
	FinalScore     float64            `json:"final_score"`
	RankID         string             `json:"rank_id"`
	RankName       string             `json:"rank_name"`
	RoleComposites map[string]float64 `json:"role_composites,omitempty"`
	IsCurrent      bool               `json:"is_current"`
}

// boardEntryResponse is one row of GET /jobs.
type boardEntryResponse struct {
	Job     jobResponse      `json:"job"`
	Ranking *rankingResponse `json:"ranking,omitempty"`
}

// jobDetailResponse is the read shape of GET /jobs/{id}: the job plus its
// current ranking and full ranking history.
type jobDetailResponse struct {
	Job     jobResponse       `json:"job"`
	Ranking *rankingResponse  `json:"ranking,omitempty"`
	History []rankingResponse `json:"history"`
}

func toJobResponse(j model.Job) jobResponse {
	return jobResponse{
		ID:         j.ID,
		Title:      j.Title,
		ClientName: j.ClientName,
		OpenedAt:   j.OpenedAt.Format(time.RFC3339),
		DaysOpen:   j.DaysOpen(time.Now().UTC()),
	}
}

func toRankingResponse(r model.JobRanking) rankingResponse {
	return rankingResponse{
		ID:             r.ID,
		JobID:          r.JobID,
		ScoringDate:    r.ScoringDate.Format(time.RFC3339),
		FinalScore:     r.FinalScore,
		RankID:         r.RankID,
		RankName:       r.RankName,
		RoleComposites: r.RoleComposites,
		IsCurrent:      r.IsCurrent,
	}
}

// HandleCreateJob handles POST /jobs requests.
func (h *JobsHandler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_job"
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	job := model.Job{
		Title:      req.Title,
		ClientName: req.ClientName,
		OpenedAt:   time.Now().UTC(),
	}
	if req.OpenedAt != "" {
		t, err := time.Parse(time.RFC3339, req.OpenedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("invalid opened_at; must be RFC3339")))
			return
		}
		job.OpenedAt = t
	}

	created, err := h.deps.CreateJob(r.Context(), job)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, toJobResponse(created))
}

// HandleBoard handles GET /jobs requests: all jobs with current rankings,
// ordered by final score descending. Query parameters rank (tier id or
// name), search (title/client substring), sort (score|days_open|client_name)
// and dir (asc|desc) shape the returned list.
func (h *JobsHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.board"
	entries, err := h.deps.Board(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	q := r.URL.Query()
	entries = filterBoard(entries, q.Get("rank"), q.Get("search"))
	sortBoard(entries, q.Get("sort"), q.Get("dir"))

	out := make([]boardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = boardEntryResponse{Job: toJobResponse(e.Job)}
		if e.Ranking != nil {
			rr := toRankingResponse(*e.Ranking)
			out[i].Ranking = &rr
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// filterBoard narrows board entries to a rank tier and a case-insensitive
// title/client substring match. An empty filter keeps everything; the rank
// filter matches either the tier id or its display name.
func filterBoard(entries []repository.BoardEntry, rank, search string) []repository.BoardEntry {
	if rank == "" && search == "" {
		return entries
	}
	search = strings.ToLower(search)

	// Filter into a fresh slice; the input may be a store snapshot the
	// caller still reads.
	out := make([]repository.BoardEntry, 0, len(entries))
	for _, e := range entries {
		if rank != "" {
			if e.Ranking == nil {
				continue
			}
			if !strings.EqualFold(e.Ranking.RankID, rank) && !strings.EqualFold(e.Ranking.RankName, rank) {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Job.Title), search) &&
			!strings.Contains(strings.ToLower(e.Job.ClientName), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// sortBoard orders entries by the requested field. The store already
// returns score-descending order, so that is the default; unranked jobs
// always sort after ranked ones when ordering by score.
func sortBoard(entries []repository.BoardEntry, field, dir string) {
	asc := dir == "asc"
	now := time.Now().UTC()

	switch field {
	case "days_open":
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i].Job.DaysOpen(now), entries[j].Job.DaysOpen(now)
			if asc {
				return a < b
			}
			return a > b
		})
	case "client_name":
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i].Job.ClientName, entries[j].Job.ClientName
			if asc {
				return a < b
			}
			return a > b
		})
	case "", "score":
		if asc {
			sort.SliceStable(entries, func(i, j int) bool {
				ri, rj := entries[i].Ranking, entries[j].Ranking
				if ri == nil || rj == nil {
					return rj == nil && ri != nil
				}
				return ri.FinalScore < rj.FinalScore
			})
		}
		// Descending by score is the store's natural order.
	}
}

// HandleGetJob handles GET /jobs/{id} requests: the job together with its
// current ranking (when one exists) and ranking history, newest first.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	id := r.PathValue("id")
	job, err := h.deps.GetJob(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	detail := jobDetailResponse{Job: toJobResponse(job), History: []rankingResponse{}}
	if ranking, err := h.deps.GetRanking(r.Context(), id); err == nil {
		rr := toRankingResponse(ranking)
		detail.Ranking = &rr
	}
	if history, err := h.deps.GetRankingHistory(r.Context(), id); err == nil {
		for _, rk := range history {
			detail.History = append(detail.History, toRankingResponse(rk))
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleSubmitScores handles POST /jobs/{id}/scores requests.
func (h *JobsHandler) HandleSubmitScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_scores"
	var req scoresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub := model.Submission{
		RaterID:   req.RaterID,
		RaterRole: req.RaterRole,
		Scores:    model.FactorScoreSet(req.Scores),
	}
	if req.ScoringDate != "" {
		t, err := time.Parse("2006-01-02", req.ScoringDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, errors.New("invalid scoring_date; must be YYYY-MM-DD")))
			return
		}
		sub.ScoringDate = t
	}

	_, err := h.deps.SubmitScores(r.Context(), r.PathValue("id"), sub)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateSubmission):
			writeJSON(w, http.StatusConflict, ackResponse{Status: "duplicate", Duplicate: true})
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", err)
		default:
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		}
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// HandleGetRanking handles GET /jobs/{id}/ranking requests.
func (h *JobsHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ranking"
	ranking, err := h.deps.GetRanking(r.Context(), r.PathValue("id"))
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRankingResponse(ranking))
}

// HandleGetHistory handles GET /jobs/{id}/history requests.
func (h *JobsHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	history, err := h.deps.GetRankingHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	out := make([]rankingResponse, len(history))
	for i, rk := range history {
		out[i] = toRankingResponse(rk)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleBreakdown handles POST /breakdown requests: per-criterion
// contributions of a score set under the active weights.
func (h *JobsHandler) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	const op = "api.breakdown"
	var req breakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	contributions, err := h.deps.Breakdown(model.FactorScoreSet(req.Scores))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, contributions)
}
