// Package browser owns the process's single headless browser session: one
// browser, one context, one active page. All tool handlers reach the page
// through Manager, which serializes access and persists authentication state
// across restarts.
package browser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/ariahq/aria/pkg/logging"
	"github.com/ariahq/aria/pkg/store"
)

// ErrNotInitialized is returned by every operation when Initialize was never
// called or failed. Browser-dependent tools surface it per call; the rest of
// the system keeps working.
var ErrNotInitialized = errors.New("browser not initialized")

// Manager guarantees a single reusable browser/context/page triple. All
// methods are safe for concurrent use; callers are serialized on one mutex so
// overlapping tool calls cannot race on the shared page.
type Manager struct {
	mu    sync.Mutex
	log   *logging.Logger
	store *store.Store
	opts  Options

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// NewManager creates an uninitialized manager. Call Initialize before use.
func NewManager(st *store.Store, opts Options) *Manager {
	log, _ := logging.NewLogger("browser")
	return &Manager{log: log, store: st, opts: opts}
}

// Initialize launches headless Chromium with the fixed profile and opens the
// context and first page. A previously persisted storage state, if any, seeds
// the context so cookies and logins survive restarts. Failure leaves the
// manager unusable but must not crash the process; the caller logs and
// continues.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.context != nil {
		return nil
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	m.log.Infof("launching chromium")
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.opts.ViewportWidth,
			Height: m.opts.ViewportHeight,
		},
		UserAgent: playwright.String(m.opts.UserAgent),
		Locale:    playwright.String(m.opts.Locale),
	}
	if m.store.AuthStateExists() {
		contextOpts.StorageStatePath = playwright.String(m.store.AuthStatePath())
		m.log.Infof("restoring persisted auth state")
	}

	context, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return fmt.Errorf("create page: %w", err)
	}

	m.pw = pw
	m.browser = browser
	m.context = context
	m.page = page
	m.log.Infof("browser ready")
	return nil
}

// Running reports whether the browser session is usable.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.context != nil
}

// CurrentPage returns the active page, transparently replacing it if the
// previous one was closed by the site or browser. It never creates a new
// context.
func (m *Manager) CurrentPage() (playwright.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentPageLocked()
}

func (m *Manager) currentPageLocked() (playwright.Page, error) {
	if m.context == nil {
		return nil, ErrNotInitialized
	}
	if m.page == nil || m.page.IsClosed() {
		page, err := m.context.NewPage()
		if err != nil {
			return nil, fmt.Errorf("reopen page: %w", err)
		}
		m.page = page
	}
	return m.page, nil
}

// Navigate loads a URL, waits for DOM-ready plus a short settle delay, and
// returns the final location, which may differ from the requested URL after
// redirects. No automatic retry.
func (m *Manager) Navigate(url string) (PageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return PageInfo{}, err
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navigationTimeoutMs),
	})
	if err != nil {
		return PageInfo{}, fmt.Errorf("navigation failed: %w", err)
	}
	page.WaitForTimeout(navigateSettleMs)

	return m.pageInfoLocked(page), nil
}

// PageInfo returns the current page's title and URL.
func (m *Manager) PageInfo() (PageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return PageInfo{}, err
	}
	return m.pageInfoLocked(page), nil
}

func (m *Manager) pageInfoLocked(page playwright.Page) PageInfo {
	title, err := page.Title()
	if err != nil {
		title = ""
	}
	return PageInfo{Title: title, URL: page.URL()}
}

// Screenshot captures the page at call time as a base64 JPEG.
func (m *Manager) Screenshot() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return "", err
	}
	buf, err := page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypeJpeg,
		Quality: playwright.Int(screenshotQuality),
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Click tries the argument as a CSS selector first, then as exact visible
// text. A missing element yields success:false, not an error — it is a
// routine outcome in automation flows.
func (m *Manager) Click(selectorOrText string) (ActionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return ActionResult{}, err
	}

	el, err := page.QuerySelector(selectorOrText)
	if err == nil && el != nil {
		if err := el.Click(); err != nil {
			return ActionResult{Success: false, Message: fmt.Sprintf("Click failed: %v", err)}, nil
		}
		page.WaitForTimeout(clickSettleMs)
		return ActionResult{Success: true, Message: fmt.Sprintf("Clicked: %s", selectorOrText)}, nil
	}

	textEl, err := page.QuerySelector(fmt.Sprintf("text=%q", selectorOrText))
	if err == nil && textEl != nil {
		if err := textEl.Click(); err != nil {
			return ActionResult{Success: false, Message: fmt.Sprintf("Click failed: %v", err)}, nil
		}
		page.WaitForTimeout(clickSettleMs)
		return ActionResult{Success: true, Message: fmt.Sprintf("Clicked text: %s", selectorOrText)}, nil
	}

	return ActionResult{Success: false, Message: fmt.Sprintf("Element not found: %s", selectorOrText)}, nil
}

// Type fills the field directly; if the fill fails (non-standard input,
// hidden element), it falls back to focusing by click and typing simulated
// keystrokes with an inter-key delay. Both failures report, not throw.
func (m *Manager) Type(selector, text string) (ActionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return ActionResult{}, err
	}

	if err := page.Fill(selector, text); err == nil {
		return ActionResult{Success: true, Message: fmt.Sprintf("Typed into: %s", selector)}, nil
	}

	if err := page.Click(selector); err != nil {
		return ActionResult{Success: false, Message: fmt.Sprintf("Type failed: %v", err)}, nil
	}
	if err := page.Keyboard().Type(text, playwright.KeyboardTypeOptions{
		Delay: playwright.Float(typeKeyDelayMs),
	}); err != nil {
		return ActionResult{Success: false, Message: fmt.Sprintf("Type failed: %v", err)}, nil
	}
	return ActionResult{Success: true, Message: fmt.Sprintf("Typed (keyboard) into: %s", selector)}, nil
}

// Wait pauses for the given number of milliseconds on the page clock. Login
// flows use it to let slow redirects finish before inspecting the URL.
func (m *Manager) Wait(ms float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return err
	}
	page.WaitForTimeout(ms)
	return nil
}

// WaitForSelector waits up to timeoutMs for the selector to appear, reporting
// whether it did.
func (m *Manager) WaitForSelector(selector string, timeoutMs float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return false
	}
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}
	_, err = page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(timeoutMs),
	})
	return err == nil
}

// Evaluate runs a JavaScript expression in the page and returns its value.
func (m *Manager) Evaluate(expression string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, err := m.currentPageLocked()
	if err != nil {
		return nil, err
	}
	return page.Evaluate(expression)
}

// SaveAuthState serializes the context's cookies and origin storage to disk.
// Called opportunistically after state-changing steps; a crash between a
// change and the save loses that increment only.
func (m *Manager) SaveAuthState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveAuthStateLocked()
}

func (m *Manager) saveAuthStateLocked() error {
	if m.context == nil {
		return ErrNotInitialized
	}
	if _, err := m.context.StorageState(m.store.AuthStatePath()); err != nil {
		return fmt.Errorf("save auth state: %w", err)
	}
	m.log.Debugf("auth state saved")
	return nil
}

// ClearAuthState removes live cookies and resets the persisted document.
func (m *Manager) ClearAuthState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.context != nil {
		if err := m.context.ClearCookies(); err != nil {
			return fmt.Errorf("clear cookies: %w", err)
		}
	}
	return m.store.ClearAuthState()
}

// Shutdown saves auth state best-effort and releases all browser resources.
// Idempotent: safe to call when never initialized or already shut down.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.context != nil {
		if err := m.saveAuthStateLocked(); err != nil {
			m.log.Warnf("save auth state on shutdown: %v", err)
		}
	}
	if m.browser != nil {
		_ = m.browser.Close()
	}
	if m.pw != nil {
		_ = m.pw.Stop()
	}
	m.page = nil
	m.context = nil
	m.browser = nil
	m.pw = nil
	m.log.Infof("browser closed")
}
