package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-dashboard/internal/browser"
	"interview-dashboard/internal/injector"
	"interview-dashboard/internal/models"
)

// blankPage is a tab whose document has no text fields unless field is set. A field
// always reads back as content.
type blankPage struct {
	field     string
	content   string
	block     bool
	navigated string
	closed    bool
	detached  bool
}

func (p *blankPage) Navigate(ctx context.Context, url string) error {
	p.navigated = url
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *blankPage) Evaluate(ctx context.Context, expression string, res any) error {
	s, ok := res.(*string)
	if !ok {
		return nil
	}
	if strings.Contains(expression, "const selectors") {
		*s = p.field
	} else {
		*s = p.content
	}
	return nil
}

func (p *blankPage) InsertText(ctx context.Context, text string) error { return nil }
func (p *blankPage) TypeKeys(ctx context.Context, text string) error   { return nil }
func (p *blankPage) SelectAll(ctx context.Context) error               { return nil }
func (p *blankPage) Paste(ctx context.Context) error                   { return nil }

func (p *blankPage) Close() error {
	p.closed = true
	return nil
}

func (p *blankPage) Detach() error {
	p.detached = true
	return nil
}

type stubOpener struct {
	page browser.Page
	err  error
}

func (o *stubOpener) Open(ctx context.Context) (browser.Page, error) {
	return o.page, o.err
}

func newJournalWithRun(id string) *fakeJournal {
	journal := newFakeJournal()
	_ = journal.Create(&models.Run{ID: id, Status: models.RunStatusInjecting})
	return journal
}

func TestInProcessLauncher_RecordsFailure(t *testing.T) {
	page := &blankPage{}
	journal := newJournalWithRun("run-1")
	cfg := models.InjectorConfig{TargetURL: "https://dashboard.example/assistants/1", PersistRounds: 10}

	released := false
	l := NewInProcessLauncher(&stubOpener{page: page}, injector.NewInjector(cfg, nil), cfg, journal)
	require.NoError(t, l.Launch(context.Background(), &Job{RunID: "run-1", Prompt: "prompt", release: func() { released = true }}))
	l.Wait()

	assert.True(t, released)
	assert.False(t, page.closed)
	assert.True(t, page.detached)
	assert.Equal(t, cfg.TargetURL, page.navigated)

	run := journal.get("run-1")
	assert.Equal(t, models.RunStatusInjectFailed, run.Status)
	assert.Contains(t, run.Error, "no text input element")
}

func TestInProcessLauncher_LeavesTabOpenAfterSuccess(t *testing.T) {
	page := &blankPage{field: "textarea", content: "prompt"}
	journal := newJournalWithRun("run-3")
	cfg := models.InjectorConfig{
		TargetURL:     "https://dashboard.example/assistants/1",
		VerifyRatio:   0.9,
		PersistRatio:  0.8,
		PersistRounds: 10,
		WatchDuration: time.Hour,
	}

	l := NewInProcessLauncher(&stubOpener{page: page}, injector.NewInjector(cfg, nil), cfg, journal)
	require.NoError(t, l.Launch(context.Background(), &Job{RunID: "run-3", Prompt: "prompt"}))
	l.Wait()

	run := journal.get("run-3")
	assert.Equal(t, models.RunStatusInjected, run.Status)
	assert.Equal(t, injector.MethodDirect, run.Method)
	assert.False(t, page.closed)
	assert.True(t, page.detached)
}

func TestInProcessLauncher_ShutdownCancelsInjection(t *testing.T) {
	page := &blankPage{block: true}
	journal := newJournalWithRun("run-4")
	cfg := models.InjectorConfig{TargetURL: "https://dashboard.example/assistants/1", PersistRounds: 10}

	released := make(chan struct{})
	l := NewInProcessLauncher(&stubOpener{page: page}, injector.NewInjector(cfg, nil), cfg, journal)
	require.NoError(t, l.Launch(context.Background(), &Job{RunID: "run-4", Prompt: "prompt", release: func() { close(released) }}))

	done := make(chan struct{})
	go func() {
		l.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not cancel the running injection")
	}
	<-released

	run := journal.get("run-4")
	assert.Equal(t, models.RunStatusInjectFailed, run.Status)
	assert.Contains(t, run.Error, context.Canceled.Error())
}

func TestInProcessLauncher_OpenFailure(t *testing.T) {
	journal := newJournalWithRun("run-2")
	cfg := models.InjectorConfig{}

	l := NewInProcessLauncher(&stubOpener{err: errors.New("no browser")}, injector.NewInjector(cfg, nil), cfg, journal)
	require.NoError(t, l.Launch(context.Background(), &Job{RunID: "run-2", Prompt: "prompt"}))
	l.Shutdown()

	run := journal.get("run-2")
	assert.Equal(t, models.RunStatusInjectFailed, run.Status)
	assert.Equal(t, "no browser", run.Error)
}

func TestExecLauncher_Args(t *testing.T) {
	l := NewExecLauncher("injector", "config.yaml")
	job := &Job{
		RunID:       "r",
		JobTitle:    "SRE",
		LinkedInURL: "https://www.linkedin.com/in/jane",
		Profile:     &models.ProfileRecord{Name: "Jane Doe", Bio: "Engineer"},
		PromptFile:  "formatted_prompt.txt",
	}

	args, err := l.Args(job)
	require.NoError(t, err)
	require.Len(t, args, 12)
	assert.Equal(t, []string{"--prompt-file", "formatted_prompt.txt", "--job-title", "SRE"}, args[:4])
	assert.Equal(t, "--linkedin-data", args[4])
	assert.Equal(t, []string{
		"--linkedin-url", "https://www.linkedin.com/in/jane",
		"--run-id", "r",
		"--config", "config.yaml",
	}, args[6:])

	var profile models.ProfileRecord
	require.NoError(t, json.Unmarshal([]byte(args[5]), &profile))
	assert.Equal(t, "Jane Doe", profile.Name)
}

func TestExecLauncher_RequiresPromptFile(t *testing.T) {
	err := NewExecLauncher("injector", "").Launch(context.Background(), &Job{RunID: "r"})
	assert.Error(t, err)
}

func TestExecLauncher_MissingBinary(t *testing.T) {
	err := NewExecLauncher("/nonexistent/injector-bin", "").Launch(context.Background(), &Job{RunID: "r", PromptFile: "p.txt"})
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		res    injector.Result
		status models.RunStatus
		method string
	}{
		{"persisted", injector.Result{Attempted: true, Persisted: true, Method: injector.MethodDirect}, models.RunStatusInjected, "direct"},
		{"partial", injector.Result{Attempted: true, Partial: true, Method: injector.MethodKeystrokes}, models.RunStatusInjected, "keystrokes_partial"},
		{"never verified", injector.Result{Rounds: 10}, models.RunStatusInjectFailed, ""},
		{"error", injector.Result{Err: injector.ErrNoElement}, models.RunStatusInjectFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, method, _ := Outcome(tt.res)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.method, method)
		})
	}
}
