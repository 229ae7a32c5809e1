package browser

import (
	"encoding/json"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// PageInfo describes the current page.
type PageInfo struct {
	URL   string
	Title string
}

// info reads the current URL and title. The caller must hold the resource.
func (m *Manager) info() (PageInfo, error) {
	page, err := m.activePage()
	if err != nil {
		return PageInfo{}, err
	}
	title, err := page.Title()
	if err != nil {
		title = ""
	}
	return PageInfo{URL: page.URL(), Title: title}, nil
}

// Navigate loads a URL and waits for the requested load state.
func (m *Manager) Navigate(url, waitUntil string, timeout float64) (PageInfo, error) {
	page, err := m.activePage()
	if err != nil {
		return PageInfo{}, err
	}

	opts := playwright.PageGotoOptions{}
	if waitUntil != "" {
		state := playwright.WaitUntilState(waitUntil)
		opts.WaitUntil = &state
	}
	if timeout > 0 {
		opts.Timeout = &timeout
	}

	if _, err := page.Goto(url, opts); err != nil {
		return PageInfo{}, fmt.Errorf("navigation failed: %w", err)
	}
	return m.info()
}

// Click clicks the element matching the selector.
func (m *Manager) Click(selector, button string, clickCount int, timeout float64) (PageInfo, error) {
	page, err := m.activePage()
	if err != nil {
		return PageInfo{}, err
	}

	opts := playwright.PageClickOptions{}
	if button != "" {
		b := playwright.MouseButton(button)
		opts.Button = &b
	}
	if clickCount > 0 {
		opts.ClickCount = &clickCount
	}
	if timeout > 0 {
		opts.Timeout = &timeout
	}

	if err := page.Click(selector, opts); err != nil {
		return PageInfo{}, fmt.Errorf("click failed: %w", err)
	}
	// Click may have triggered a navigation.
	return m.info()
}

// Fill types a value into the element matching the selector, optionally
// pressing Enter afterwards to submit.
func (m *Manager) Fill(selector, value string, pressEnter bool, timeout float64) error {
	page, err := m.activePage()
	if err != nil {
		return err
	}

	opts := playwright.PageFillOptions{}
	if timeout > 0 {
		opts.Timeout = &timeout
	}
	if err := page.Fill(selector, value, opts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}

	if pressEnter {
		pressOpts := playwright.PagePressOptions{}
		if timeout > 0 {
			pressOpts.Timeout = &timeout
		}
		if err := page.Press(selector, "Enter", pressOpts); err != nil {
			return fmt.Errorf("pressing Enter failed: %w", err)
		}
	}
	return nil
}

// WaitFor waits until the element matching the selector reaches the given
// state.
func (m *Manager) WaitFor(selector, state string, timeout float64) error {
	page, err := m.activePage()
	if err != nil {
		return err
	}

	opts := playwright.PageWaitForSelectorOptions{}
	if state != "" {
		s := playwright.WaitForSelectorState(state)
		opts.State = &s
	}
	if timeout > 0 {
		opts.Timeout = &timeout
	}

	if _, err := page.WaitForSelector(selector, opts); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// Content returns the full HTML of the current page.
func (m *Manager) Content() (string, error) {
	page, err := m.activePage()
	if err != nil {
		return "", err
	}
	content, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// Evaluate runs a JavaScript expression in the page and returns the result
// serialized as JSON.
func (m *Manager) Evaluate(expression string) (string, error) {
	page, err := m.activePage()
	if err != nil {
		return "", err
	}

	value, err := page.Evaluate(expression)
	if err != nil {
		return "", fmt.Errorf("evaluation failed: %w", err)
	}
	if value == nil {
		return "null", nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value), nil
	}
	return string(encoded), nil
}

// Screenshot captures the current page to the given path.
func (m *Manager) Screenshot(path string, fullPage bool) error {
	page, err := m.activePage()
	if err != nil {
		return err
	}

	opts := playwright.PageScreenshotOptions{
		Path:     &path,
		FullPage: &fullPage,
	}
	if _, err := page.Screenshot(opts); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// Back navigates to the previous page in history.
func (m *Manager) Back(timeout float64) (PageInfo, error) {
	page, err := m.activePage()
	if err != nil {
		return PageInfo{}, err
	}

	opts := playwright.PageGoBackOptions{}
	if timeout > 0 {
		opts.Timeout = &timeout
	}
	resp, err := page.GoBack(opts)
	if err != nil {
		return PageInfo{}, fmt.Errorf("going back failed: %w", err)
	}
	if resp == nil {
		return PageInfo{}, fmt.Errorf("no earlier page in history")
	}
	return m.info()
}

// Info returns the current page URL and title.
func (m *Manager) Info() (PageInfo, error) {
	return m.info()
}
