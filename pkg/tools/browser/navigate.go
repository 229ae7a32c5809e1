package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// NavigateTool loads a URL in the shared browser page.
type NavigateTool struct {
	manager *Manager
	guard   *HostGuard
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(manager *Manager, guard *HostGuard) *NavigateTool {
	return &NavigateTool{
		manager: manager,
		guard:   guard,
	}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate the browser to a URL. The page is loaded and ready for interaction when this returns."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to navigate to (must include protocol, e.g. https://example.com)",
			},
			"wait_until": map[string]interface{}{
				"type":        "string",
				"description": "When to consider navigation complete: 'load' (default), 'domcontentloaded', or 'networkidle'",
			},
			"timeout_ms": map[string]interface{}{
				"type":        "number",
				"description": "Navigation timeout in milliseconds (default 30000)",
			},
		},
		[]string{"url"},
	)
}

type navigateInput struct {
	URL       string  `json:"url"`
	WaitUntil string  `json:"wait_until"`
	TimeoutMS float64 `json:"timeout_ms"`
}

// Execute navigates to the URL.
func (t *NavigateTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input navigateInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}

	if input.URL == "" {
		return "", fmt.Errorf("url is required")
	}
	waitUntil := input.WaitUntil
	if waitUntil == "" {
		waitUntil = "load"
	}
	if !validWaitUntil[waitUntil] {
		return "", fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", waitUntil)
	}
	if err := t.guard.CheckURL(input.URL); err != nil {
		return "", err
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	info, err := t.manager.Navigate(input.URL, waitUntil, effectiveTimeout(t.manager, input.TimeoutMS))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Navigation successful\n\nURL: %s\nTitle: %s\n\nThe page has loaded. Use browser_extract to read it or browser_click, browser_type, and the other browser tools to interact with it.",
		info.URL, info.Title), nil
}
