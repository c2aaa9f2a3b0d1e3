package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"interview-dashboard/internal/models"
)

// PlaywrightManager opens tabs through playwright connected over CDP to the same Chrome
type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywrightManager starts the playwright driver and connects to the debugging endpoint
func NewPlaywrightManager(cfg models.BrowserConfig) (*PlaywrightManager, error) {
	opts := &playwright.RunOptions{SkipInstallBrowsers: true}

	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	b, err := pw.Chromium.ConnectOverCDP(cfg.DebugURL)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("connect over cdp to %s failed: %w", cfg.DebugURL, err)
	}

	return &PlaywrightManager{pw: pw, browser: b}, nil
}

// Open creates a new page in the browser's default context
func (m *PlaywrightManager) Open(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bc playwright.BrowserContext
	if contexts := m.browser.Contexts(); len(contexts) > 0 {
		bc = contexts[0]
	} else {
		var err error
		if bc, err = m.browser.NewContext(); err != nil {
			return nil, fmt.Errorf("failed to create browser context: %w", err)
		}
	}

	pg, err := bc.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &pwPage{page: pg}, nil
}

// Close disconnects from the browser and stops the driver, the browser itself keeps running
func (m *PlaywrightManager) Close() error {
	if m.browser != nil {
		_ = m.browser.Close()
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}

type pwPage struct {
	page playwright.Page
}

func (p *pwPage) Navigate(ctx context.Context, url string) error {
	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if deadline, ok := ctx.Deadline(); ok {
		opts.Timeout = playwright.Float(float64(time.Until(deadline).Milliseconds()))
	}

	_, err := p.page.Goto(url, opts)
	return err
}

func (p *pwPage) Evaluate(ctx context.Context, expression string, res any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v, err := p.page.Evaluate(expression)
	if err != nil {
		return fmt.Errorf("js evaluation failed: %w", err)
	}
	if res == nil {
		return nil
	}

	// round-trip through JSON to decode into the caller's type
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, res)
}

func (p *pwPage) InsertText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().InsertText(text)
}

func (p *pwPage) TypeKeys(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Type(text)
}

func (p *pwPage) SelectAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Press("ControlOrMeta+a")
}

func (p *pwPage) Paste(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Press("ControlOrMeta+v")
}

func (p *pwPage) Close() error {
	return p.page.Close()
}

// Detach is a no-op: the page lives in the browser's default context, which survives the
// driver disconnecting in PlaywrightManager.Close
func (p *pwPage) Detach() error {
	return nil
}
