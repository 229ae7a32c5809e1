// Package browser provides the shared browser resource and the browser
// action tools exposed to the planner.
//
// The process owns exactly one Playwright driver, one Chromium instance,
// one context, and one page. Every tool invocation from every session runs
// against this single page, so the manager exposes an explicit
// Acquire/Release discipline that serializes all tool calls process-wide.
package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Default values for browser operations
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultMaxLength      = 10000   // extraction cap in characters
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Manager owns the process-wide browser resource.
type Manager struct {
	// sem serializes access to the page across all sessions
	sem chan struct{}

	mu         sync.Mutex
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	page       playwright.Page
	headless   bool
	timeout    float64
	guard      *HostGuard
	started    bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHeadless controls whether the browser runs without a visible window.
func WithHeadless(headless bool) ManagerOption {
	return func(m *Manager) {
		m.headless = headless
	}
}

// WithDefaultTimeout sets the default operation timeout in milliseconds.
func WithDefaultTimeout(timeout float64) ManagerOption {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithHostGuard installs a navigation allowlist enforced at the browser
// context level, so navigations triggered by clicks and scripts are
// filtered the same way as explicit goto calls.
func WithHostGuard(guard *HostGuard) ManagerOption {
	return func(m *Manager) {
		m.guard = guard
	}
}

// NewManager creates a browser manager. Start must be called before any
// page operation.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sem:      make(chan struct{}, 1),
		headless: true,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start installs and launches Playwright, then opens the single shared
// browser, context, and page.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	// Discard driver output so it never interleaves with the prompt.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &m.headless,
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create browser context: %w", err)
	}

	if m.guard != nil && !m.guard.Open() {
		if err := browserCtx.Route("**/*", m.filterRoute); err != nil {
			browserCtx.Close()
			browser.Close()
			pw.Stop()
			return fmt.Errorf("failed to install host filter: %w", err)
		}
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(m.timeout)

	m.pw = pw
	m.browser = browser
	m.browserCtx = browserCtx
	m.page = page
	m.started = true
	return nil
}

// Acquire takes exclusive ownership of the browser resource, blocking until
// it is free or the context is canceled. Every tool invocation must pair
// Acquire with a deferred Release.
func (m *Manager) Acquire(ctx context.Context) error {
	select {
	case m.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for browser: %w", ctx.Err())
	}
}

// Release gives up ownership taken by Acquire.
func (m *Manager) Release() {
	select {
	case <-m.sem:
	default:
		// Release without Acquire is a programming error; don't block.
	}
}

// Started reports whether the browser resource is live.
func (m *Manager) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// DefaultTimeoutMillis returns the configured default operation timeout.
func (m *Manager) DefaultTimeoutMillis() float64 {
	return m.timeout
}

// Shutdown closes the page, context, browser, and driver. Safe to call
// when never started.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}

	// Best effort teardown; keep going on individual close errors.
	_ = m.page.Close()
	_ = m.browserCtx.Close()
	_ = m.browser.Close()

	m.started = false
	if err := m.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// filterRoute aborts disallowed requests. Subresource requests pass
// through so allowed pages still load assets from other hosts.
func (m *Manager) filterRoute(route playwright.Route) {
	request := route.Request()
	if !blockRequest(m.guard, request.URL(), request.IsNavigationRequest()) {
		_ = route.Continue()
		return
	}
	_ = route.Abort("blockedbyclient")
}

// blockRequest reports whether a request must be aborted under the guard.
// Only navigation requests are checked against the allowlist.
func blockRequest(guard *HostGuard, rawURL string, isNavigation bool) bool {
	if !isNavigation {
		return false
	}
	return guard.CheckURL(rawURL) != nil
}

// activePage returns the live page or an error when the browser is down.
func (m *Manager) activePage() (playwright.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil, fmt.Errorf("browser is not running")
	}
	return m.page, nil
}
