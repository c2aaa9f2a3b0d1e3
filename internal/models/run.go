package models

import "time"

// RunStatus is the lifecycle state of a pipeline run
type RunStatus string

const (
	RunStatusScraped      RunStatus = "scraped"
	RunStatusScrapeFailed RunStatus = "scrape_failed"
	RunStatusInjecting    RunStatus = "injecting"
	RunStatusInjected     RunStatus = "injected"
	RunStatusInjectFailed RunStatus = "inject_failed"
)

// Run represents one submission flowing through the pipeline
type Run struct {
	ID              string    `json:"id"`
	LinkedInURL     string    `json:"linkedin_url"`
	JobTitle        string    `json:"job_title"`
	CandidateName   string    `json:"candidate_name"`
	ExperienceCount int       `json:"experience_count"`
	Status          RunStatus `json:"status"`
	Method          string    `json:"method,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
