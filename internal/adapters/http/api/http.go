// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/jobrank/internal/adapters/repository"
	"github.com/okian/jobrank/internal/bulktest"
	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scheme"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// validate checks request payload structs against their struct tags.
var validate = validator.New()

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Job tracking and scoring.
	CreateJob(ctx context.Context, job model.Job) (model.Job, error)
	GetJob(ctx context.Context, id string) (model.Job, error)
	SubmitScores(ctx context.Context, jobID string, sub model.Submission) (model.Submission, error)
	GetRanking(ctx context.Context, jobID string) (model.JobRanking, error)
	GetRankingHistory(ctx context.Context, jobID string) ([]model.JobRanking, error)
	Board(ctx context.Context) ([]repository.BoardEntry, error)
	Breakdown(scores model.FactorScoreSet) ([]scoring.Contribution, error)

	// Weight management.
	Weights() model.WeightSet
	SetWeights(ctx context.Context, weights model.WeightSet) error

	// Scheme and bulk validation.
	Scheme() *scheme.Store
	BulkSession() *bulktest.Session
	RunBulkReport(ctx context.Context) (bulktest.Report, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	jobsHandler     *JobsHandler
	schemeHandler   *SchemeHandler
	weightsHandler  *WeightsHandler
	bulkTestHandler *BulkTestHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		jobsHandler:     NewJobsHandler(deps),
		schemeHandler:   NewSchemeHandler(deps),
		weightsHandler:  NewWeightsHandler(deps),
		bulkTestHandler: NewBulkTestHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /jobs", MetricsMiddleware(s.jobsHandler.HandleCreateJob, "jobs"))
	mux.HandleFunc("GET /jobs", MetricsMiddleware(s.jobsHandler.HandleBoard, "jobs"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
	mux.HandleFunc("POST /jobs/{id}/scores", MetricsMiddleware(s.jobsHandler.HandleSubmitScores, "scores"))
	mux.HandleFunc("GET /jobs/{id}/ranking", MetricsMiddleware(s.jobsHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("GET /jobs/{id}/history", MetricsMiddleware(s.jobsHandler.HandleGetHistory, "history"))
	mux.HandleFunc("POST /breakdown", MetricsMiddleware(s.jobsHandler.HandleBreakdown, "breakdown"))

	mux.HandleFunc("GET /weights", MetricsMiddleware(s.weightsHandler.HandleGetWeights, "weights"))
	mux.HandleFunc("PUT /weights", MetricsMiddleware(s.weightsHandler.HandleSetWeights, "weights"))

	mux.HandleFunc("GET /scheme", MetricsMiddleware(s.schemeHandler.HandleGetScheme, "scheme"))
	mux.HandleFunc("PUT /scheme", MetricsMiddleware(s.schemeHandler.HandleImportScheme, "scheme"))
	mux.HandleFunc("POST /scheme/criteria", MetricsMiddleware(s.schemeHandler.HandleAddCriterion, "scheme_criteria"))
	mux.HandleFunc("PATCH /scheme/criteria/{id}", MetricsMiddleware(s.schemeHandler.HandleUpdateCriterion, "scheme_criteria"))
	mux.HandleFunc("DELETE /scheme/criteria/{id}", MetricsMiddleware(s.schemeHandler.HandleRemoveCriterion, "scheme_criteria"))
	mux.HandleFunc("POST /scheme/ranks", MetricsMiddleware(s.schemeHandler.HandleAddRank, "scheme_ranks"))
	mux.HandleFunc("PATCH /scheme/ranks/{id}", MetricsMiddleware(s.schemeHandler.HandleUpdateRank, "scheme_ranks"))
	mux.HandleFunc("DELETE /scheme/ranks/{id}", MetricsMiddleware(s.schemeHandler.HandleRemoveRank, "scheme_ranks"))

	mux.HandleFunc("POST /bulktest/upload", MetricsMiddleware(s.bulkTestHandler.HandleUpload, "bulktest_upload"))
	mux.HandleFunc("GET /bulktest/jobs", MetricsMiddleware(s.bulkTestHandler.HandleListJobs, "bulktest_jobs"))
	mux.HandleFunc("PUT /bulktest/jobs/{id}/scores", MetricsMiddleware(s.bulkTestHandler.HandleSetScores, "bulktest_scores"))
	mux.HandleFunc("PUT /bulktest/jobs/{id}/rank", MetricsMiddleware(s.bulkTestHandler.HandleSetExpectedRank, "bulktest_rank"))
	mux.HandleFunc("GET /bulktest/stats", MetricsMiddleware(s.bulkTestHandler.HandleStats, "bulktest_stats"))
	mux.HandleFunc("GET /bulktest/report", MetricsMiddleware(s.bulkTestHandler.HandleReport, "bulktest_report"))
	mux.HandleFunc("GET /bulktest/report.csv", MetricsMiddleware(s.bulkTestHandler.HandleReportCSV, "bulktest_export"))
	mux.HandleFunc("DELETE /bulktest/jobs", MetricsMiddleware(s.bulkTestHandler.HandleClear, "bulktest_clear"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrJobNotFound) ||
		errors.Is(err, repository.ErrRankingNotFound) ||
		errors.Is(err, bulktest.ErrJobNotFound) ||
		errors.Is(err, scheme.ErrCriterionNotFound) ||
		errors.Is(err, scheme.ErrRankNotFound)
}
