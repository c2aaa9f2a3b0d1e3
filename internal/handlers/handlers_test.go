package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-dashboard/internal/database"
	"interview-dashboard/internal/models"
	"interview-dashboard/internal/pipeline"
)

type fakeSubmitter struct {
	got pipeline.SubmitRequest
	res *pipeline.SubmitResult
	err error
}

func (s *fakeSubmitter) Submit(ctx context.Context, req pipeline.SubmitRequest) (*pipeline.SubmitResult, error) {
	s.got = req
	return s.res, s.err
}

type fakeRuns struct {
	limit  int
	runs   []models.Run
	counts map[models.RunStatus]int
	err    error
}

func (f *fakeRuns) List(limit int) ([]models.Run, error) {
	f.limit = limit
	return f.runs, f.err
}

func (f *fakeRuns) Get(id string) (*models.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, database.ErrRunNotFound
}

func (f *fakeRuns) CountByStatus() (map[models.RunStatus]int, error) {
	return f.counts, f.err
}

func serve(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) SubmitResponse {
	t.Helper()

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubmit_Success(t *testing.T) {
	submitter := &fakeSubmitter{res: &pipeline.SubmitResult{
		RunID:   "run-1",
		Profile: &models.ProfileRecord{Name: "Jane Doe", Bio: "Engineer"},
		Prompt:  "full prompt",
		Preview: "full prompt",
	}}
	h := NewHandler(submitter, nil, 1<<20)

	w := serve(t, h, http.MethodPost, "/submit", `{"linkedin":"https://www.linkedin.com/in/jane","resumeName":"SRE"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	resp := decode(t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "full prompt", resp.FormattedPromptPreview)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Jane Doe", resp.Profile.Name)

	assert.Equal(t, "https://www.linkedin.com/in/jane", submitter.got.LinkedInURL)
	assert.Equal(t, "SRE", submitter.got.JobTitle)
}

func TestSubmit_InvalidJSON(t *testing.T) {
	h := NewHandler(&fakeSubmitter{}, nil, 1<<20)

	w := serve(t, h, http.MethodPost, "/submit", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestSubmit_MissingURL(t *testing.T) {
	h := NewHandler(&fakeSubmitter{err: pipeline.ErrInvalidRequest}, nil, 1<<20)

	w := serve(t, h, http.MethodPost, "/submit", `{"linkedin":"","resumeName":"SRE"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, pipeline.ErrInvalidRequest.Error(), decode(t, w).Message)
}

func TestSubmit_PipelineFailure(t *testing.T) {
	h := NewHandler(&fakeSubmitter{err: errors.New("failed to scrape profile: navigate: timeout")}, nil, 1<<20)

	w := serve(t, h, http.MethodPost, "/submit", `{"linkedin":"https://www.linkedin.com/in/jane"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "timeout")
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	h := NewHandler(&fakeSubmitter{}, nil, 64)

	body := fmt.Sprintf(`{"linkedin":"%s"}`, strings.Repeat("a", 200))
	w := serve(t, h, http.MethodPost, "/submit", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPreflight(t *testing.T) {
	h := NewHandler(&fakeSubmitter{}, nil, 1<<20)

	w := serve(t, h, http.MethodOptions, "/submit", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type,Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET,PUT,POST,DELETE,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestIndex(t *testing.T) {
	w := serve(t, NewHandler(&fakeSubmitter{}, nil, 0), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `id="linkedin"`)
	assert.Contains(t, w.Body.String(), "/submit")
}

func TestRuns(t *testing.T) {
	runs := &fakeRuns{
		runs: []models.Run{{ID: "a", Status: models.RunStatusInjected}},
		counts: map[models.RunStatus]int{
			models.RunStatusInjected:     1,
			models.RunStatusScrapeFailed: 2,
		},
	}
	h := NewHandler(&fakeSubmitter{}, runs, 0)

	w := serve(t, h, http.MethodGet, "/runs?limit=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, runs.limit)

	var body struct {
		Status string                   `json:"status"`
		Runs   []models.Run             `json:"runs"`
		Counts map[models.RunStatus]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, models.RunStatusInjected, body.Runs[0].Status)
	assert.Equal(t, 1, body.Counts[models.RunStatusInjected])
	assert.Equal(t, 2, body.Counts[models.RunStatusScrapeFailed])
}

func TestRun(t *testing.T) {
	runs := &fakeRuns{runs: []models.Run{
		{ID: "a", Status: models.RunStatusInjected, Method: "direct"},
		{ID: "b", Status: models.RunStatusInjectFailed},
	}}
	h := NewHandler(&fakeSubmitter{}, runs, 0)

	w := serve(t, h, http.MethodGet, "/runs/a", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string     `json:"status"`
		Run    models.Run `json:"run"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "a", body.Run.ID)
	assert.Equal(t, "direct", body.Run.Method)
}

func TestRun_NotFound(t *testing.T) {
	h := NewHandler(&fakeSubmitter{}, &fakeRuns{}, 0)

	w := serve(t, h, http.MethodGet, "/runs/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, database.ErrRunNotFound.Error(), decode(t, w).Message)
}

func TestRun_StoreFailure(t *testing.T) {
	h := NewHandler(&fakeSubmitter{}, &fakeRuns{err: errors.New("database is locked")}, 0)

	w := serve(t, h, http.MethodGet, "/runs/a", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRuns_DefaultLimitAndValidation(t *testing.T) {
	runs := &fakeRuns{}
	h := NewHandler(&fakeSubmitter{}, runs, 0)

	w := serve(t, h, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultRunsLimit, runs.limit)

	w = serve(t, h, http.MethodGet, "/runs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuns_JournalDisabled(t *testing.T) {
	h := NewHandler(&fakeSubmitter{}, nil, 0)

	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/runs", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/runs/a", "").Code)
}

func TestHealth(t *testing.T) {
	w := serve(t, NewHandler(&fakeSubmitter{}, nil, 0), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
