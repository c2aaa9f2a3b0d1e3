package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
	"interview-dashboard/internal/prompt"
	"interview-dashboard/internal/storage"
	"interview-dashboard/internal/utils"
)

// ErrInvalidRequest is returned for submissions missing a profile URL
var ErrInvalidRequest = errors.New("LinkedIn URL is required")

// Extractor scrapes a profile page
type Extractor interface {
	Extract(ctx context.Context, profileURL string) (*models.ProfileRecord, error)
}

// Journal records runs; the pipeline works without one
type Journal interface {
	Create(run *models.Run) error
	UpdateStatus(id string, status models.RunStatus, method, errMsg string) error
}

// SubmitRequest is one dashboard submission
type SubmitRequest struct {
	LinkedInURL string
	JobTitle    string
}

// SubmitResult is returned once the prompt is assembled and injection has been launched
type SubmitResult struct {
	RunID   string
	Profile *models.ProfileRecord
	Prompt  string
	Preview string
}

// Pipeline runs extraction, assembly and injection for one submission at a time
type Pipeline struct {
	extractor     Extractor
	assembler     *prompt.Assembler
	handoff       *storage.PromptFile
	journal       Journal
	launcher      Launcher
	sem           *semaphore.Weighted
	previewLength int
}

// Options holds the pipeline's collaborators
type Options struct {
	Extractor Extractor
	Assembler *prompt.Assembler
	// Handoff is optional; when set the prompt is saved there before launch
	Handoff  *storage.PromptFile
	Journal  Journal
	Launcher Launcher
	// MaxConcurrent bounds runs sharing the browser (default 1)
	MaxConcurrent int64
	PreviewLength int
}

// New creates a pipeline
func New(opts Options) *Pipeline {
	weight := opts.MaxConcurrent
	if weight <= 0 {
		weight = 1
	}

	return &Pipeline{
		extractor:     opts.Extractor,
		assembler:     opts.Assembler,
		handoff:       opts.Handoff,
		journal:       opts.Journal,
		launcher:      opts.Launcher,
		sem:           semaphore.NewWeighted(weight),
		previewLength: opts.PreviewLength,
	}
}

// Submit scrapes the profile, assembles the prompt and launches injection. It returns
// once injection is launched; the browser slot is released when injection finishes.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	profileURL := strings.TrimSpace(req.LinkedInURL)
	if profileURL == "" {
		return nil, ErrInvalidRequest
	}
	jobTitle := strings.TrimSpace(req.JobTitle)

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire browser slot: %w", err)
	}
	release := func() { p.sem.Release(1) }

	runID := uuid.NewString()
	start := time.Now()
	logger.Info("Starting run", "run_id", runID, "url", profileURL, "job_title", jobTitle)

	profile, err := p.extractor.Extract(ctx, profileURL)
	if err != nil {
		release()
		p.record(&models.Run{
			ID:          runID,
			LinkedInURL: profileURL,
			JobTitle:    jobTitle,
			Status:      models.RunStatusScrapeFailed,
			Error:       err.Error(),
		})
		return nil, fmt.Errorf("failed to scrape profile: %w", err)
	}
	logger.Info("Extraction finished",
		"run_id", runID,
		"name", profile.Name,
		"experiences", len(profile.Experiences),
		"elapsed", utils.FormatDuration(time.Since(start)))

	formatted := p.assembler.Assemble(profile, jobTitle)

	run := &models.Run{
		ID:              runID,
		LinkedInURL:     profileURL,
		JobTitle:        jobTitle,
		CandidateName:   profile.Name,
		ExperienceCount: len(profile.Experiences),
		Status:          models.RunStatusInjecting,
	}
	job := Job{
		RunID:       runID,
		LinkedInURL: profileURL,
		JobTitle:    jobTitle,
		Profile:     profile,
		Prompt:      formatted,
		release:     release,
	}

	if p.handoff != nil {
		if err := p.handoff.Write(formatted); err != nil {
			release()
			run.Status = models.RunStatusInjectFailed
			run.Error = err.Error()
			p.record(run)
			return nil, err
		}
		job.PromptFile = p.handoff.Path()
		logger.Debug("Prompt saved", "run_id", runID, "path", job.PromptFile)
	}

	// created before launch; the launcher owns the final status
	p.record(run)

	if err := p.launcher.Launch(ctx, &job); err != nil {
		job.Finish()
		p.update(runID, models.RunStatusInjectFailed, "", err.Error())
		return nil, fmt.Errorf("failed to launch injection: %w", err)
	}

	return &SubmitResult{
		RunID:   runID,
		Profile: profile,
		Prompt:  formatted,
		Preview: utils.Preview(formatted, p.previewLength),
	}, nil
}

func (p *Pipeline) record(run *models.Run) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Create(run); err != nil {
		logger.Warn("Failed to record run", "run_id", run.ID, "error", err)
	}
}

func (p *Pipeline) update(runID string, status models.RunStatus, method, errMsg string) {
	if p.journal == nil {
		return
	}
	if err := p.journal.UpdateStatus(runID, status, method, errMsg); err != nil {
		logger.Warn("Failed to update run", "run_id", runID, "status", status, "error", err)
	}
}
