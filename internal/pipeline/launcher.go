package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"interview-dashboard/internal/browser"
	"interview-dashboard/internal/injector"
	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
)

const (
	LauncherInProcess = "inprocess"
	LauncherExec      = "exec"
)

// Job is one injection handed to a launcher
type Job struct {
	RunID       string
	LinkedInURL string
	JobTitle    string
	Profile     *models.ProfileRecord
	Prompt      string
	// PromptFile is set when the prompt was saved to the handoff file
	PromptFile string

	release func()
	once    sync.Once
}

// Finish releases the job's browser slot; later calls are no-ops
func (j *Job) Finish() {
	j.once.Do(func() {
		if j.release != nil {
			j.release()
		}
	})
}

// Launcher starts injection without waiting for it. Implementations call job.Finish
// once the browser is no longer driven.
type Launcher interface {
	Launch(ctx context.Context, job *Job) error
}

// InProcessLauncher injects from a goroutine of the dashboard process. The injection tab
// is left open for the user, with the in-page watcher still running in it.
type InProcessLauncher struct {
	opener    browser.Opener
	injector  *injector.Injector
	targetURL string
	journal   Journal

	// ctx outlives requests and is cancelled by Shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewInProcessLauncher creates an in-process launcher; journal may be nil
func NewInProcessLauncher(opener browser.Opener, inj *injector.Injector, cfg models.InjectorConfig, journal Journal) *InProcessLauncher {
	ctx, cancel := context.WithCancel(context.Background())

	return &InProcessLauncher{
		opener:    opener,
		injector:  inj,
		targetURL: cfg.TargetURL,
		journal:   journal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Launch starts injection on the launcher's context; the request context ends with the response
func (l *InProcessLauncher) Launch(ctx context.Context, job *Job) error {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(l.ctx, job)
	}()
	return nil
}

func (l *InProcessLauncher) run(ctx context.Context, job *Job) {
	defer job.Finish()

	page, err := l.opener.Open(ctx)
	if err != nil {
		logger.Error("Failed to open injection tab", "run_id", job.RunID, "error", err)
		l.update(job.RunID, models.RunStatusInjectFailed, "", err.Error())
		return
	}

	res := l.injector.Inject(ctx, page, l.targetURL, job.Prompt)

	status, method, errMsg := Outcome(res)
	l.update(job.RunID, status, method, errMsg)
	if res.Success() {
		logger.Info("Prompt injected", "run_id", job.RunID, "method", method, "persisted", res.Persisted)
	} else {
		logger.Error("Prompt injection failed", "run_id", job.RunID, "error", errMsg)
	}

	if err := page.Detach(); err != nil {
		logger.Debug("Failed to detach from injection tab", "run_id", job.RunID, "error", err)
	}
}

// Wait blocks until every launched injection has finished driving its tab
func (l *InProcessLauncher) Wait() {
	l.wg.Wait()
}

// Shutdown cancels running injections and waits for them to return
func (l *InProcessLauncher) Shutdown() {
	l.cancel()
	l.wg.Wait()
}

func (l *InProcessLauncher) update(runID string, status models.RunStatus, method, errMsg string) {
	if l.journal == nil {
		return
	}
	if err := l.journal.UpdateStatus(runID, status, method, errMsg); err != nil {
		logger.Warn("Failed to update run", "run_id", runID, "error", err)
	}
}

// Outcome maps an injection result to the journal's status, method and error
func Outcome(res injector.Result) (models.RunStatus, string, string) {
	method := res.Method
	if res.Partial {
		method += "_partial"
	}

	switch {
	case res.Err != nil:
		return models.RunStatusInjectFailed, method, res.Err.Error()
	case !res.Success():
		return models.RunStatusInjectFailed, method, fmt.Sprintf("no delivery method verified after %d rounds", res.Rounds)
	case !res.Persisted:
		return models.RunStatusInjected, method, "content did not persist; watcher installed"
	default:
		return models.RunStatusInjected, method, ""
	}
}

// ExecLauncher spawns the injector binary as a separate process
type ExecLauncher struct {
	bin        string
	configPath string

	wg sync.WaitGroup
}

// NewExecLauncher creates a launcher for bin; configPath is forwarded when set
func NewExecLauncher(bin, configPath string) *ExecLauncher {
	return &ExecLauncher{
		bin:        bin,
		configPath: configPath,
	}
}

// Args returns the injector command line for job; the profile travels as JSON
func (l *ExecLauncher) Args(job *Job) ([]string, error) {
	profile, err := json.Marshal(job.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	args := []string{
		"--prompt-file", job.PromptFile,
		"--job-title", job.JobTitle,
		"--linkedin-data", string(profile),
		"--linkedin-url", job.LinkedInURL,
		"--run-id", job.RunID,
	}
	if l.configPath != "" {
		args = append(args, "--config", l.configPath)
	}
	return args, nil
}

func (l *ExecLauncher) Launch(ctx context.Context, job *Job) error {
	if job.PromptFile == "" {
		return errors.New("exec launcher requires a prompt handoff file")
	}

	args, err := l.Args(job)
	if err != nil {
		return err
	}

	// not bound to ctx: the injector outlives the request
	cmd := exec.Command(l.bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.bin, err)
	}
	logger.Info("Injector process started", "run_id", job.RunID, "pid", cmd.Process.Pid)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer job.Finish()

		if err := cmd.Wait(); err != nil {
			logger.Error("Injector process failed", "run_id", job.RunID, "error", err)
			return
		}
		logger.Info("Injector process finished", "run_id", job.RunID)
	}()

	return nil
}

// Wait blocks until every spawned process has been reaped
func (l *ExecLauncher) Wait() {
	l.wg.Wait()
}
