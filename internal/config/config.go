package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"interview-dashboard/internal/models"
)

// DefaultTargetURL is the assistant page whose system prompt receives the interview prompt
const DefaultTargetURL = "https://dashboard.vapi.ai/v2/assistants/94e635ef-eb8f-40e0-b1b6-3958d91241da"

// DefaultConfig returns the default configuration for the dashboard
func DefaultConfig() models.Config {
	return models.Config{
		Server: models.ServerConfig{
			Host:            "127.0.0.1",
			Port:            5000,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 10 * time.Second,
			PreviewLength:   500,
		},
		Browser: models.BrowserConfig{
			DebugURL: "http://127.0.0.1:9222",
		},
		Scraper: models.ScraperConfig{
			NavigationTimeout: 30 * time.Second,
			SettleDelay:       10 * time.Second,
			ExclusionMarkers:  []string{"3rd+", "followers", "members", "Published"},
		},
		Injector: models.InjectorConfig{
			Driver:    "chromedp",
			TargetURL: DefaultTargetURL,
			Selectors: []string{
				`textarea[data-testid="system-prompt-textarea"]`,
				`textarea[placeholder*="system"]`,
				`textarea[placeholder*="prompt"]`,
				`textarea`,
				`[data-testid="system-prompt-textarea"]`,
				`#system-prompt`,
				`.system-prompt`,
			},
			FallbackSelector:  `textarea, input[type="text"], input:not([type]), [contenteditable="true"]`,
			NavigationTimeout: 30 * time.Second,
			SettleDelay:       5 * time.Second,
			VerifyRatio:       0.9,
			PersistRatio:      0.8,
			PasteAttempts:     3,
			ChunkSize:         500,
			PartialLimit:      1000,
			PersistRounds:     10,
			PersistDelay:      2 * time.Second,
			RetryDelay:        1 * time.Second,
			StepDelay:         200 * time.Millisecond,
			WatchInterval:     500 * time.Millisecond,
			WatchDuration:     30 * time.Second,
		},
		Prompt: models.PromptConfig{
			TemplatePath: "paste.txt",
			HandoffPath:  "formatted_prompt.txt",
		},
		Journal: models.JournalConfig{
			Path: "dashboard.db",
		},
		Launcher: models.LauncherConfig{
			Mode:          "inprocess",
			InjectorBin:   "injector",
			MaxConcurrent: 1,
		},
		Log: models.LogConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stdout",
			FilePath: "scrape.log",
		},
	}
}

// Load builds the configuration from defaults, an optional yaml file and the environment.
// A missing yaml file is not an error.
func Load(path string) (models.Config, error) {
	// .env is optional, system environment still applies
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings the server or the injector cannot run with
func Validate(cfg models.Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}

	inj := cfg.Injector
	positive := []struct {
		name  string
		value int
	}{
		{"injector.persist_rounds", inj.PersistRounds},
		{"injector.paste_attempts", inj.PasteAttempts},
		{"injector.chunk_size", inj.ChunkSize},
		{"injector.partial_limit", inj.PartialLimit},
	}
	for _, f := range positive {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.name, f.value))
		}
	}

	ratios := []struct {
		name  string
		value float64
	}{
		{"injector.verify_ratio", inj.VerifyRatio},
		{"injector.persist_ratio", inj.PersistRatio},
	}
	for _, f := range ratios {
		if f.value <= 0 || f.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be in (0, 1], got %g", f.name, f.value))
		}
	}

	if cfg.Launcher.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("launcher.max_concurrent must not be negative, got %d", cfg.Launcher.MaxConcurrent))
	}

	return errors.Join(errs...)
}

func applyEnv(cfg *models.Config) error {
	if port := os.Getenv("DASHBOARD_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid DASHBOARD_PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	cfg.Browser.DebugURL = getenv("CHROME_DEBUG_URL", cfg.Browser.DebugURL)
	cfg.Injector.TargetURL = getenv("INJECT_TARGET_URL", cfg.Injector.TargetURL)
	cfg.Injector.Driver = getenv("INJECT_DRIVER", cfg.Injector.Driver)
	cfg.Prompt.TemplatePath = getenv("PROMPT_TEMPLATE_PATH", cfg.Prompt.TemplatePath)
	cfg.Journal.Path = getenv("JOURNAL_PATH", cfg.Journal.Path)
	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)

	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
