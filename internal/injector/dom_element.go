package injector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"interview-dashboard/internal/browser"
)

// ErrNoElement is returned when the page has no field the prompt could go into
var ErrNoElement = errors.New("no text input element found on page")

const targetAttr = "data-prompt-target"

const locateScript = `
(() => {
	const selectors = %s;
	const fallback = %s;
	const mark = (el, sel) => {
		document.querySelectorAll('[%[3]s]').forEach(e => e.removeAttribute('%[3]s'));
		el.setAttribute('%[3]s', %[4]s);
		if (el.scrollIntoView) el.scrollIntoView({ block: 'center' });
		return sel;
	};
	for (const sel of selectors) {
		let el = null;
		try { el = document.querySelector(sel); } catch (e) { continue; }
		if (el) return mark(el, sel);
	}
	const any = fallback ? document.querySelector(fallback) : null;
	return any ? mark(any, fallback) : '';
})()
`

// Locate marks the first element matching selectors (in priority order), falling back
// to the first element matching fallback. It returns the element and the selector that matched.
func Locate(ctx context.Context, page browser.Page, selectors []string, fallback string) (Element, string, error) {
	token := uuid.NewString()

	script := fmt.Sprintf(locateScript, jsLiteral(selectors), jsLiteral(fallback), targetAttr, jsLiteral(token))

	var matched string
	if err := page.Evaluate(ctx, script, &matched); err != nil {
		return nil, "", fmt.Errorf("failed to query selectors: %w", err)
	}
	if matched == "" {
		return nil, "", ErrNoElement
	}

	return &domElement{
		page:     page,
		selector: fmt.Sprintf(`[%s="%s"]`, targetAttr, token),
	}, matched, nil
}

// domElement drives a field located by Locate through page-scoped scripts
type domElement struct {
	page     browser.Page
	selector string
}

// eval runs body with `el` bound to the marked element; body must return a value
func (e *domElement) eval(ctx context.Context, body string, res any) error {
	script := fmt.Sprintf(`
(() => {
	const el = document.querySelector(%s);
	if (!el) throw new Error('prompt target detached');
	const isValue = 'value' in el;
	const read = () => isValue ? el.value : el.innerText;
	const write = (text) => {
		if (!isValue) { el.innerText = text; return; }
		const proto = Object.getPrototypeOf(el);
		const desc = Object.getOwnPropertyDescriptor(proto, 'value');
		if (desc && desc.set) { desc.set.call(el, text); } else { el.value = text; }
	};
	const fire = (types) => types.forEach(t => el.dispatchEvent(new Event(t, { bubbles: true, cancelable: true })));
	%s
})()`, jsLiteral(e.selector), body)

	return e.page.Evaluate(ctx, script, res)
}

func (e *domElement) Content(ctx context.Context) (string, error) {
	var content string
	err := e.eval(ctx, `return read();`, &content)
	return content, err
}

func (e *domElement) SetContent(ctx context.Context, text string) error {
	body := fmt.Sprintf(`
	const text = %s;
	el.focus();
	write(text);
	fire(['input', 'change', 'keyup', 'keydown', 'paste']);
	el.dispatchEvent(new InputEvent('input', { bubbles: true, cancelable: true, data: text }));
	el.blur();
	setTimeout(() => el.focus(), 100);
	return true;`, jsLiteral(text))

	return e.eval(ctx, body, nil)
}

func (e *domElement) Focus(ctx context.Context) error {
	return e.eval(ctx, `
	if (el.scrollIntoView) el.scrollIntoView({ block: 'center' });
	el.focus();
	return true;`, nil)
}

func (e *domElement) SelectAll(ctx context.Context) error {
	if err := e.eval(ctx, `
	el.focus();
	if (el.select) el.select();
	return true;`, nil); err != nil {
		return err
	}
	return e.page.SelectAll(ctx)
}

func (e *domElement) Paste(ctx context.Context) error {
	if err := e.SelectAll(ctx); err != nil {
		return err
	}
	if err := e.page.Paste(ctx); err != nil {
		return err
	}
	return e.eval(ctx, `
	fire(['input', 'change', 'blur', 'focus']);
	return true;`, nil)
}

func (e *domElement) InsertText(ctx context.Context, text string) error {
	return e.page.InsertText(ctx, text)
}

func (e *domElement) TypeKeys(ctx context.Context, text string) error {
	return e.page.TypeKeys(ctx, text)
}

func (e *domElement) InstallWatcher(ctx context.Context, text string, interval, duration time.Duration) error {
	body := fmt.Sprintf(`
	const target = %s;
	const restore = () => {
		if (read() !== target) {
			write(target);
			fire(['input', 'change']);
			console.log('Content guardian restored text');
		}
	};
	if (window.__promptGuardian) clearInterval(window.__promptGuardian);
	restore();
	const id = setInterval(restore, %d);
	window.__promptGuardian = id;
	setTimeout(() => {
		clearInterval(id);
		if (window.__promptGuardian === id) window.__promptGuardian = null;
		console.log('Content guardian stopped');
	}, %d);
	return true;`, jsLiteral(text), interval.Milliseconds(), duration.Milliseconds())

	return e.eval(ctx, body, nil)
}

// jsLiteral encodes v as a JavaScript literal; JSON escapes U+2028/U+2029 so the result is safe in source
func jsLiteral(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
