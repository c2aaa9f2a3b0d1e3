package browser

import (
	"context"
	"fmt"
	"strings"

	"interview-dashboard/internal/models"
)

// Page is one browser tab driven by the pipeline
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Evaluate runs a page-scoped expression and decodes its value into res (res may be nil)
	Evaluate(ctx context.Context, expression string, res any) error
	// InsertText delivers text as a single input event at the focused element
	InsertText(ctx context.Context, text string) error
	// TypeKeys sends text as individual keystrokes to the focused element
	TypeKeys(ctx context.Context, text string) error
	SelectAll(ctx context.Context) error
	Paste(ctx context.Context) error
	// Close closes the tab
	Close() error
	// Detach releases the tab without closing it, leaving the page to the user
	Detach() error
}

// Opener opens new tabs on an already running browser
type Opener interface {
	Open(ctx context.Context) (Page, error)
}

// Driver is an Opener holding a connection that must be released
type Driver interface {
	Opener
	Close() error
}

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
)

// NewDriver creates the named driver against the configured debugging endpoint
func NewDriver(name string, cfg models.BrowserConfig) (Driver, error) {
	switch strings.ToLower(name) {
	case "", DriverChromedp:
		return NewBrowserManager(cfg), nil
	case DriverPlaywright:
		return NewPlaywrightManager(cfg)
	default:
		return nil, fmt.Errorf("unknown browser driver %q", name)
	}
}
