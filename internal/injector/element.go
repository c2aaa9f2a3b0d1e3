package injector

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
)

// Element is the text field receiving the prompt. The host page may rewrite it at any
// time, so every write is followed by a read.
type Element interface {
	// Content returns the field's current value (or text for contenteditable hosts)
	Content(ctx context.Context) (string, error)
	// SetContent assigns the value directly and dispatches synthetic input/change events
	SetContent(ctx context.Context, text string) error
	Focus(ctx context.Context) error
	SelectAll(ctx context.Context) error
	// Paste focuses the field, selects everything and pastes the system clipboard
	Paste(ctx context.Context) error
	// InsertText delivers text as one synthetic input event at the caret
	InsertText(ctx context.Context, text string) error
	// TypeKeys delivers text as raw keystrokes
	TypeKeys(ctx context.Context, text string) error
	// InstallWatcher starts an in-page timer restoring text whenever the field diverges.
	// It returns once installed; the timer stops by itself after duration.
	InstallWatcher(ctx context.Context, text string, interval, duration time.Duration) error
}

// Clipboard is the system clipboard used by the paste step
type Clipboard interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

// SystemClipboard is the OS clipboard
type SystemClipboard struct{}

// NewSystemClipboard returns the OS clipboard, or nil when no clipboard utility is available
func NewSystemClipboard() Clipboard {
	if clipboard.Unsupported {
		return nil
	}
	return SystemClipboard{}
}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}
