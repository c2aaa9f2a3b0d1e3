package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"interview-dashboard/internal/models"
)

// BrowserManager opens chromedp tabs on a Chrome started with --remote-debugging-port
type BrowserManager struct {
	debugURL string
}

// NewBrowserManager creates a new BrowserManager instance
func NewBrowserManager(cfg models.BrowserConfig) *BrowserManager {
	return &BrowserManager{debugURL: cfg.DebugURL}
}

// Open creates a new tab on the remote browser and attaches to it with page and runtime
// domains enabled. The tab is attached as the connection's first target, so cancelling the
// connection detaches from it without closing it; only Close closes the tab.
func (bm *BrowserManager) Open(ctx context.Context) (Page, error) {
	id, err := bm.createTarget(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create tab on %s: %w", bm.debugURL, err)
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, websocketURL(bm.debugURL))
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithTargetID(id))

	combinedCancel := func() {
		tabCancel()
		allocCancel()
	}

	if err := chromedp.Run(tabCtx, page.Enable(), runtime.Enable()); err != nil {
		combinedCancel()
		return nil, fmt.Errorf("failed to attach to tab on %s: %w", bm.debugURL, err)
	}

	return &cdpPage{ctx: tabCtx, cancel: combinedCancel, id: id}, nil
}

// createTarget opens a blank tab over a short-lived browser connection
func (bm *BrowserManager) createTarget(ctx context.Context) (target.ID, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, websocketURL(bm.debugURL))
	defer allocCancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var id target.ID
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		id, err = target.CreateTarget("about:blank").Do(cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Browser))
		return err
	}))
	return id, err
}

// Close is a no-op, every tab owns its own connection
func (bm *BrowserManager) Close() error {
	return nil
}

// websocketURL maps http://host:port to the ws:// form chromedp discovers the browser from
func websocketURL(debugURL string) string {
	switch {
	case strings.HasPrefix(debugURL, "http://"):
		debugURL = "ws://" + strings.TrimPrefix(debugURL, "http://")
	case strings.HasPrefix(debugURL, "https://"):
		debugURL = "wss://" + strings.TrimPrefix(debugURL, "https://")
	case !strings.Contains(debugURL, "://"):
		debugURL = "ws://" + debugURL
	}
	if !strings.HasSuffix(debugURL, "/") && !strings.Contains(debugURL, "/devtools/") {
		debugURL += "/"
	}
	return debugURL
}

type cdpPage struct {
	ctx    context.Context
	cancel context.CancelFunc
	id     target.ID
}

// run executes actions on the tab while honoring cancellation of the caller's ctx
func (p *cdpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *cdpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *cdpPage) Evaluate(ctx context.Context, expression string, res any) error {
	return p.run(ctx, chromedp.Evaluate(expression, res))
}

func (p *cdpPage) InsertText(ctx context.Context, text string) error {
	return p.run(ctx, input.InsertText(text))
}

func (p *cdpPage) TypeKeys(ctx context.Context, text string) error {
	return p.run(ctx, chromedp.KeyEvent(text))
}

func (p *cdpPage) SelectAll(ctx context.Context) error {
	return p.run(ctx, shortcut("a", "KeyA", 65, "selectAll")...)
}

func (p *cdpPage) Paste(ctx context.Context) error {
	return p.run(ctx, shortcut("v", "KeyV", 86, "paste")...)
}

// Close closes the tab and drops the connection
func (p *cdpPage) Close() error {
	defer p.cancel()

	return chromedp.Run(p.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return target.CloseTarget(p.id).Do(cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Browser))
	}))
}

// Detach drops the connection and leaves the tab open
func (p *cdpPage) Detach() error {
	p.cancel()
	return nil
}

// shortcut builds a Ctrl+key press carrying the editing command Chrome should execute
func shortcut(key, code string, keyCode int64, command string) []chromedp.Action {
	down := input.DispatchKeyEvent(input.KeyDown).
		WithKey(key).
		WithCode(code).
		WithWindowsVirtualKeyCode(keyCode).
		WithModifiers(input.ModifierCtrl).
		WithCommands([]string{command})
	up := input.DispatchKeyEvent(input.KeyUp).
		WithKey(key).
		WithCode(code).
		WithWindowsVirtualKeyCode(keyCode).
		WithModifiers(input.ModifierCtrl)

	return []chromedp.Action{down, up}
}
