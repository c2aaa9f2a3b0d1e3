package models

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Browser  BrowserConfig  `yaml:"browser"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Injector InjectorConfig `yaml:"injector"`
	Prompt   PromptConfig   `yaml:"prompt"`
	Journal  JournalConfig  `yaml:"journal"`
	Launcher LauncherConfig `yaml:"launcher"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP form server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	PreviewLength   int           `yaml:"preview_length"`
}

// BrowserConfig describes how to reach the already running Chrome instance
type BrowserConfig struct {
	DebugURL string `yaml:"debug_url"`
}

// ScraperConfig holds the profile extraction settings
type ScraperConfig struct {
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	ExclusionMarkers  []string      `yaml:"exclusion_markers"`
}

// InjectorConfig holds the prompt injection settings
type InjectorConfig struct {
	Driver            string        `yaml:"driver"`
	TargetURL         string        `yaml:"target_url"`
	Selectors         []string      `yaml:"selectors"`
	FallbackSelector  string        `yaml:"fallback_selector"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	VerifyRatio       float64       `yaml:"verify_ratio"`
	PersistRatio      float64       `yaml:"persist_ratio"`
	PasteAttempts     int           `yaml:"paste_attempts"`
	ChunkSize         int           `yaml:"chunk_size"`
	PartialLimit      int           `yaml:"partial_limit"`
	PersistRounds     int           `yaml:"persist_rounds"`
	PersistDelay      time.Duration `yaml:"persist_delay"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	StepDelay         time.Duration `yaml:"step_delay"`
	WatchInterval     time.Duration `yaml:"watch_interval"`
	WatchDuration     time.Duration `yaml:"watch_duration"`
}

// PromptConfig holds template and handoff file locations
type PromptConfig struct {
	TemplatePath string `yaml:"template_path"`
	HandoffPath  string `yaml:"handoff_path"`
}

// JournalConfig holds the run journal settings, an empty path disables it
type JournalConfig struct {
	Path string `yaml:"path"`
}

// LauncherConfig selects how the injection step is started
type LauncherConfig struct {
	Mode          string `yaml:"mode"`
	InjectorBin   string `yaml:"injector_bin"`
	MaxConcurrent int64  `yaml:"max_concurrent"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}
