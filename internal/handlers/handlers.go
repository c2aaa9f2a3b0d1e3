package handlers

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"interview-dashboard/internal/database"
	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
	"interview-dashboard/internal/pipeline"
)

//go:embed static/index.html
var indexHTML []byte

const defaultRunsLimit = 20

// Submitter runs one submission through the pipeline
type Submitter interface {
	Submit(ctx context.Context, req pipeline.SubmitRequest) (*pipeline.SubmitResult, error)
}

// RunStore reads journal rows
type RunStore interface {
	List(limit int) ([]models.Run, error)
	Get(id string) (*models.Run, error)
	CountByStatus() (map[models.RunStatus]int, error)
}

// submitRequest is the JSON body posted by the form
type submitRequest struct {
	LinkedIn   string `json:"linkedin"`
	ResumeName string `json:"resumeName"`
}

// Handler serves the dashboard
type Handler struct {
	submitter    Submitter
	runs         RunStore
	maxBodyBytes int64
}

// NewHandler creates a handler; runs may be nil when the journal is disabled
func NewHandler(submitter Submitter, runs RunStore, maxBodyBytes int64) *Handler {
	return &Handler{
		submitter:    submitter,
		runs:         runs,
		maxBodyBytes: maxBodyBytes,
	}
}

// NewRouter wires the dashboard routes and middleware
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(DefaultCORSConfig()))

	r.Get("/", h.Index)
	r.Post("/submit", h.Submit)
	r.Get("/runs", h.Runs)
	r.Get("/runs/{id}", h.Run)
	r.Get("/healthz", h.Health)

	return r
}

// Index serves the submission form
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// Submit scrapes the posted profile and launches injection
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	start := time.Now()
	res, err := h.submitter.Submit(r.Context(), pipeline.SubmitRequest{
		LinkedInURL: req.LinkedIn,
		JobTitle:    req.ResumeName,
	})
	if errors.Is(err, pipeline.ErrInvalidRequest) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Error("Submission failed",
			"request_id", middleware.GetReqID(r.Context()),
			"url", req.LinkedIn,
			"error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("Submission accepted",
		"request_id", middleware.GetReqID(r.Context()),
		"run_id", res.RunID,
		"elapsed", time.Since(start).String())

	WriteJSON(w, http.StatusOK, SubmitResponse{
		Status:                 statusSuccess,
		Message:                "Profile scraped and prompt injection started",
		Profile:                res.Profile,
		FormattedPromptPreview: res.Preview,
		RunID:                  res.RunID,
	})
}

// Runs lists recent runs from the journal
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		WriteError(w, http.StatusNotFound, "Run journal is disabled")
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.List(limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts, err := h.runs.CountByStatus()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"runs":   runs,
		"counts": counts,
	})
}

// Run returns one journal row
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		WriteError(w, http.StatusNotFound, "Run journal is disabled")
		return
	}

	run, err := h.runs.Get(chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrRunNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": statusSuccess,
		"run":    run,
	})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
