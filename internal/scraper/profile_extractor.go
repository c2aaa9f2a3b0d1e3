package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interview-dashboard/internal/browser"
	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
)

// Extraction stages reported by ExtractionError
const (
	StageConnect  = "connect"
	StageNavigate = "navigate"
	StageEvaluate = "evaluate"
	StageDecode   = "decode"
)

// ExtractionError is returned when a profile could not be scraped at all
type ExtractionError struct {
	URL   string
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s failed: %v", e.URL, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ProfileExtractor handles LinkedIn profile data extraction
type ProfileExtractor struct {
	opener            browser.Opener
	navigationTimeout time.Duration
	settleDelay       time.Duration
	markers           []string
}

// NewProfileExtractor creates a new ProfileExtractor instance
func NewProfileExtractor(opener browser.Opener, cfg models.ScraperConfig) *ProfileExtractor {
	return &ProfileExtractor{
		opener:            opener,
		navigationTimeout: cfg.NavigationTimeout,
		settleDelay:       cfg.SettleDelay,
		markers:           cfg.ExclusionMarkers,
	}
}

// Extract opens a tab, loads the profile, waits for it to render and scrapes it.
// The tab is closed before returning.
func (pe *ProfileExtractor) Extract(ctx context.Context, profileURL string) (*models.ProfileRecord, error) {
	script, err := BuildExtractionScript(pe.markers)
	if err != nil {
		return nil, &ExtractionError{URL: profileURL, Stage: StageEvaluate, Err: err}
	}

	tab, err := pe.opener.Open(ctx)
	if err != nil {
		return nil, &ExtractionError{URL: profileURL, Stage: StageConnect, Err: err}
	}
	defer func() {
		if err := tab.Close(); err != nil {
			logger.Warn("Failed to close profile tab", "url", profileURL, "error", err)
		}
	}()

	logger.Info("Navigating to profile", "url", profileURL)

	navCtx := ctx
	if pe.navigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, pe.navigationTimeout)
		defer cancel()
	}
	if err := tab.Navigate(navCtx, profileURL); err != nil {
		return nil, &ExtractionError{URL: profileURL, Stage: StageNavigate, Err: err}
	}

	// content is rendered by scripts after the load event
	if err := sleep(ctx, pe.settleDelay); err != nil {
		return nil, &ExtractionError{URL: profileURL, Stage: StageNavigate, Err: err}
	}

	var raw string
	if err := tab.Evaluate(ctx, script, &raw); err != nil {
		return nil, &ExtractionError{URL: profileURL, Stage: StageEvaluate, Err: err}
	}

	profile, err := ParseProfileJSON([]byte(raw), pe.markers)
	if err != nil {
		return nil, &ExtractionError{URL: profileURL, Stage: StageDecode, Err: err}
	}

	logger.Info("Profile scraped",
		"url", profileURL,
		"name", profile.Name,
		"experiences", len(profile.Experiences),
		"education", len(profile.Education),
		"skills", len(profile.Skills))

	return profile, nil
}

// ParseProfileJSON decodes the extraction script's output and normalizes it
func ParseProfileJSON(data []byte, markers []string) (*models.ProfileRecord, error) {
	var profile models.ProfileRecord
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}

	profile.Experiences = FilterExperiences(profile.Experiences, markers)
	ApplyPlaceholders(&profile)

	return &profile, nil
}

// FilterExperiences drops entries carrying an exclusion marker in company or duration,
// and entries missing company, designation or duration. Order is preserved.
func FilterExperiences(entries []models.ExperienceEntry, markers []string) []models.ExperienceEntry {
	kept := make([]models.ExperienceEntry, 0, len(entries))
	for _, e := range entries {
		if containsAny(e.Company, markers) || containsAny(e.Duration, markers) {
			continue
		}
		if e.Company == "" || e.Designation == "" || e.Duration == "" {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// ApplyPlaceholders fills missing name and bio with their fixed placeholder strings
func ApplyPlaceholders(profile *models.ProfileRecord) {
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = NameNotFound
	}
	if strings.TrimSpace(profile.Bio) == "" {
		profile.Bio = BioNotFound
	}
}

func containsAny(value string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(value, m) {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
