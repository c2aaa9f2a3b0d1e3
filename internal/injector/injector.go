package injector

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"interview-dashboard/internal/browser"
	"interview-dashboard/internal/logger"
	"interview-dashboard/internal/models"
	"interview-dashboard/internal/utils"
)

// ErrEmptyText is returned when there is nothing to inject
var ErrEmptyText = errors.New("prompt text is empty")

// Delivery methods, in the order they are tried
const (
	MethodDirect     = "direct"
	MethodClipboard  = "clipboard"
	MethodChunked    = "chunked_input"
	MethodKeystrokes = "keystrokes"
)

// Result is the outcome of one injection
type Result struct {
	// Attempted is set once any delivery method passed verification
	Attempted bool
	// Persisted is set when the content survived the persistence check
	Persisted bool
	// Partial is set when only the truncated prefix could be delivered
	Partial  bool
	Method   string
	Selector string
	Rounds   int
	Err      error
}

// Success reports whether some method verified, even if the host page later reverted it
func (r Result) Success() bool {
	return r.Err == nil && r.Attempted
}

// Injector delivers prompt text into a host page's text field
type Injector struct {
	cfg       models.InjectorConfig
	clipboard Clipboard
}

// NewInjector creates an injector; a nil clipboard skips the paste step
func NewInjector(cfg models.InjectorConfig, clipboard Clipboard) *Injector {
	return &Injector{
		cfg:       cfg,
		clipboard: clipboard,
	}
}

// Inject opens targetURL in page, locates the prompt field and delivers text into it.
// The watcher keeps running in the page after Inject returns.
func (in *Injector) Inject(ctx context.Context, page browser.Page, targetURL, text string) Result {
	if text == "" {
		return Result{Err: ErrEmptyText}
	}

	start := time.Now()
	logger.Info("Navigating to injection target", "url", targetURL)

	navCtx := ctx
	if in.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, in.cfg.NavigationTimeout)
		defer cancel()
	}
	if err := page.Navigate(navCtx, targetURL); err != nil {
		return Result{Err: fmt.Errorf("failed to navigate to %s: %w", targetURL, err)}
	}

	if err := sleep(ctx, in.cfg.SettleDelay); err != nil {
		return Result{Err: err}
	}

	el, selector, err := Locate(ctx, page, in.cfg.Selectors, in.cfg.FallbackSelector)
	if err != nil {
		return Result{Err: err}
	}
	logger.Info("Found prompt field", "selector", selector)

	res := in.Deliver(ctx, el, text)
	res.Selector = selector

	logger.Info("Injection finished",
		"success", res.Success(),
		"persisted", res.Persisted,
		"method", res.Method,
		"rounds", res.Rounds,
		"elapsed", utils.FormatDuration(time.Since(start)))
	return res
}

// Deliver runs the persistence loop on el and then installs the watcher
func (in *Injector) Deliver(ctx context.Context, el Element, text string) Result {
	if text == "" {
		return Result{Err: ErrEmptyText}
	}

	var res Result
	for round := 1; round <= in.cfg.PersistRounds; round++ {
		res.Rounds = round

		method, partial, ok := in.attempt(ctx, el, text)
		if ok {
			res.Attempted = true
			res.Method = method
			res.Partial = partial

			if err := sleep(ctx, in.cfg.PersistDelay); err != nil {
				res.Err = err
				return res
			}
			if in.persisted(ctx, el, text) {
				res.Persisted = true
				logger.Info("Prompt persisted", "round", round, "method", method)
				break
			}
			logger.Warn("Content reverted by page, retrying", "round", round, "method", method)
		} else {
			logger.Warn("All delivery methods failed", "round", round)
		}

		if round == in.cfg.PersistRounds {
			break
		}
		if err := sleep(ctx, in.cfg.RetryDelay); err != nil {
			res.Err = err
			return res
		}
	}

	if err := el.InstallWatcher(ctx, text, in.cfg.WatchInterval, in.cfg.WatchDuration); err != nil {
		logger.Warn("Failed to install content watcher", "error", err)
	} else {
		logger.Debug("Content watcher installed", "interval", in.cfg.WatchInterval, "duration", in.cfg.WatchDuration)
	}

	return res
}

// attempt walks the delivery ladder once and returns the first method that verified
func (in *Injector) attempt(ctx context.Context, el Element, text string) (string, bool, bool) {
	want := utf8.RuneCountInString(text)

	if err := el.SetContent(ctx, text); err != nil {
		logger.Debug("Direct assignment failed", "error", err)
	} else if in.verified(ctx, el, want) {
		return MethodDirect, false, true
	}
	in.pause(ctx)

	if in.clipboard != nil {
		for i := 1; i <= in.cfg.PasteAttempts; i++ {
			if err := in.paste(ctx, el, text); err != nil {
				logger.Debug("Clipboard paste failed", "attempt", i, "error", err)
			} else if in.verified(ctx, el, want) {
				return MethodClipboard, false, true
			}
			in.pause(ctx)
		}
	}

	if err := in.typeChunks(ctx, el, text); err != nil {
		logger.Debug("Chunked input failed", "error", err)
	} else if in.verified(ctx, el, want) {
		return MethodChunked, false, true
	}
	in.pause(ctx)

	prefix := truncate(text, in.cfg.PartialLimit)
	if err := in.typePrefix(ctx, el, prefix); err != nil {
		logger.Debug("Keystroke input failed", "error", err)
	} else if in.verified(ctx, el, utf8.RuneCountInString(prefix)) {
		return MethodKeystrokes, len(prefix) < len(text), true
	}

	return "", false, false
}

func (in *Injector) paste(ctx context.Context, el Element, text string) error {
	if err := in.clipboard.WriteAll(""); err != nil {
		return err
	}
	if err := in.clipboard.WriteAll(text); err != nil {
		return err
	}

	// some clipboard backends truncate on the first write
	copied, err := in.clipboard.ReadAll()
	if err != nil {
		return err
	}
	if !in.covers(copied, utf8.RuneCountInString(text), in.cfg.VerifyRatio) {
		if err := in.clipboard.WriteAll(text); err != nil {
			return err
		}
	}

	return el.Paste(ctx)
}

func (in *Injector) typeChunks(ctx context.Context, el Element, text string) error {
	if err := el.Focus(ctx); err != nil {
		return err
	}
	if err := el.SelectAll(ctx); err != nil {
		return err
	}
	for _, chunk := range chunks(text, in.cfg.ChunkSize) {
		if err := el.InsertText(ctx, chunk); err != nil {
			return err
		}
		in.pause(ctx)
	}
	return nil
}

func (in *Injector) typePrefix(ctx context.Context, el Element, prefix string) error {
	if err := el.Focus(ctx); err != nil {
		return err
	}
	if err := el.SelectAll(ctx); err != nil {
		return err
	}
	return el.TypeKeys(ctx, prefix)
}

// verified reports whether the field holds at least VerifyRatio of want characters
func (in *Injector) verified(ctx context.Context, el Element, want int) bool {
	content, err := el.Content(ctx)
	if err != nil {
		logger.Debug("Failed to read field content", "error", err)
		return false
	}
	return in.covers(content, want, in.cfg.VerifyRatio)
}

// persisted reports whether the field still holds more than PersistRatio of text
func (in *Injector) persisted(ctx context.Context, el Element, text string) bool {
	content, err := el.Content(ctx)
	if err != nil {
		return false
	}
	return float64(utf8.RuneCountInString(content)) > in.cfg.PersistRatio*float64(utf8.RuneCountInString(text))
}

func (in *Injector) covers(content string, want int, ratio float64) bool {
	return float64(utf8.RuneCountInString(content)) >= ratio*float64(want)
}

func (in *Injector) pause(ctx context.Context) {
	_ = sleep(ctx, in.cfg.StepDelay)
}

// chunks splits text into pieces of at most size runes
func chunks(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	out := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

// truncate returns the first limit runes of text
func truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
