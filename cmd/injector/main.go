package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"interview-dashboard/internal/browser"
	"interview-dashboard/internal/config"
	"interview-dashboard/internal/injector"
	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
	"interview-dashboard/internal/pipeline"
	"interview-dashboard/internal/storage"
	"interview-dashboard/internal/utils"
)

func main() {
	promptFile := flag.String("prompt-file", "formatted_prompt.txt", "file holding the assembled prompt")
	jobTitle := flag.String("job-title", "", "job title the prompt was assembled for")
	linkedInData := flag.String("linkedin-data", "", "scraped profile the prompt was built from, as JSON")
	linkedInURL := flag.String("linkedin-url", "", "LinkedIn profile URL")
	runID := flag.String("run-id", "", "journal run to update")
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	targetURL := flag.String("target-url", "", "page holding the prompt field (overrides config)")
	flag.Parse()

	profile, err := parseProfile(*linkedInData)
	if err != nil {
		utils.PrintErr(err.Error())
		os.Exit(1)
	}

	ok, err := run(*configPath, *promptFile, *targetURL, *runID)
	if err != nil {
		utils.PrintErr(err.Error())
		os.Exit(1)
	}

	logger.Info("Injector done",
		"run_id", *runID,
		"job_title", *jobTitle,
		"candidate", profile.Name,
		"linkedin", *linkedInURL,
		"success", ok)
	if !ok {
		os.Exit(2)
	}
}

// parseProfile decodes the --linkedin-data flag; an empty value yields an empty profile
func parseProfile(data string) (*models.ProfileRecord, error) {
	profile := &models.ProfileRecord{}
	if data == "" {
		return profile, nil
	}
	if err := json.Unmarshal([]byte(data), profile); err != nil {
		return nil, fmt.Errorf("invalid --linkedin-data: %w", err)
	}
	return profile, nil
}

func run(configPath, promptFile, targetURL, runID string) (bool, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return false, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return false, err
	}
	if targetURL != "" {
		cfg.Injector.TargetURL = targetURL
	}

	text, err := storage.NewPromptFile(promptFile).Read()
	if err != nil {
		return false, err
	}

	ds, err := storage.OpenJournal(cfg.Journal)
	if err != nil {
		logger.Warn("Journal unavailable, run will not be recorded", "error", err)
		ds = nil
	}
	defer ds.Close()

	ctx, cancel := utils.SetupSignalHandling(context.Background(), nil)
	defer cancel()

	driver, err := browser.NewDriver(cfg.Injector.Driver, cfg.Browser)
	if err != nil {
		return false, err
	}

	page, err := driver.Open(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to open injection tab: %w", err)
	}

	start := time.Now()
	res := injector.NewInjector(cfg.Injector, injector.NewSystemClipboard()).Inject(ctx, page, cfg.Injector.TargetURL, text)
	logger.Info("Injection result",
		"method", res.Method,
		"persisted", res.Persisted,
		"partial", res.Partial,
		"rounds", res.Rounds,
		"elapsed", utils.FormatDuration(time.Since(start)))

	if ds != nil && runID != "" {
		status, method, errMsg := pipeline.Outcome(res)
		if err := ds.RunRepo.UpdateStatus(runID, status, method, errMsg); err != nil {
			logger.Warn("Failed to update run", "run_id", runID, "error", err)
		}
	}

	// the tab stays open for the watcher; only the driver connection is released
	if err := page.Detach(); err != nil {
		logger.Debug("Failed to detach from injection tab", "error", err)
	}
	if err := driver.Close(); err != nil {
		logger.Debug("Failed to release driver", "error", err)
	}

	if res.Err != nil {
		return false, res.Err
	}
	return res.Success(), nil
}
