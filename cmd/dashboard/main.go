package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"interview-dashboard/internal/browser"
	"interview-dashboard/internal/config"
	"interview-dashboard/internal/handlers"
	"interview-dashboard/internal/injector"
	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
	"interview-dashboard/internal/pipeline"
	"interview-dashboard/internal/prompt"
	"interview-dashboard/internal/scraper"
	"interview-dashboard/internal/storage"
	"interview-dashboard/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		utils.PrintErr(err.Error())
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}

	template, err := prompt.LoadTemplate(cfg.Prompt.TemplatePath)
	if err != nil {
		return err
	}

	ds, err := storage.OpenJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer ds.Close()

	var journal pipeline.Journal
	var runs handlers.RunStore
	if ds != nil {
		journal = ds.RunRepo
		runs = ds.RunRepo
	}

	launcher, shutdownLauncher, err := newLauncher(cfg, configPath, journal)
	if err != nil {
		return err
	}
	defer shutdownLauncher()

	p := pipeline.New(pipeline.Options{
		Extractor:     scraper.NewProfileExtractor(browser.NewBrowserManager(cfg.Browser), cfg.Scraper),
		Assembler:     prompt.NewAssembler(template),
		Handoff:       storage.NewPromptFile(cfg.Prompt.HandoffPath),
		Journal:       journal,
		Launcher:      launcher,
		MaxConcurrent: cfg.Launcher.MaxConcurrent,
		PreviewLength: cfg.Server.PreviewLength,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handlers.NewRouter(handlers.NewHandler(p, runs, cfg.Server.MaxBodyBytes)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := utils.SetupSignalHandling(context.Background(), nil)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening",
			"addr", srv.Addr,
			"debug_url", cfg.Browser.DebugURL,
			"target_url", cfg.Injector.TargetURL,
			"launcher", cfg.Launcher.Mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("Dashboard stopped")
	return nil
}

// newLauncher builds the configured launcher and the func releasing it on shutdown
func newLauncher(cfg models.Config, configPath string, journal pipeline.Journal) (pipeline.Launcher, func(), error) {
	switch cfg.Launcher.Mode {
	case pipeline.LauncherExec:
		l := pipeline.NewExecLauncher(cfg.Launcher.InjectorBin, configPath)
		return l, l.Wait, nil

	case "", pipeline.LauncherInProcess:
		driver, err := browser.NewDriver(cfg.Injector.Driver, cfg.Browser)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create injector driver: %w", err)
		}

		clipboard := injector.NewSystemClipboard()
		if clipboard == nil {
			logger.Warn("System clipboard unavailable, paste step disabled")
		}

		l := pipeline.NewInProcessLauncher(driver, injector.NewInjector(cfg.Injector, clipboard), cfg.Injector, journal)
		return l, func() {
			l.Shutdown()
			if err := driver.Close(); err != nil {
				logger.Warn("Failed to close browser driver", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown launcher mode %q", cfg.Launcher.Mode)
	}
}
