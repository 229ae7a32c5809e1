package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// ClickTool clicks an element on the current page.
type ClickTool struct {
	manager *Manager
}

// NewClickTool creates a new click tool.
func NewClickTool(manager *Manager) *ClickTool {
	return &ClickTool{manager: manager}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "browser_click"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click an element on the current page identified by a CSS selector. Follows any navigation the click triggers."
}

// Schema returns the tool's JSON schema.
func (t *ClickTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector of the element to click",
			},
			"button": map[string]interface{}{
				"type":        "string",
				"description": "Mouse button: 'left' (default), 'right', or 'middle'",
			},
			"click_count": map[string]interface{}{
				"type":        "integer",
				"description": "Number of clicks, e.g. 2 for double-click (default 1)",
			},
			"timeout_ms": map[string]interface{}{
				"type":        "number",
				"description": "Timeout in milliseconds waiting for the element (default 30000)",
			},
		},
		[]string{"selector"},
	)
}

type clickInput struct {
	Selector   string  `json:"selector"`
	Button     string  `json:"button"`
	ClickCount int     `json:"click_count"`
	TimeoutMS  float64 `json:"timeout_ms"`
}

// Execute clicks the element.
func (t *ClickTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input clickInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}

	if input.Selector == "" {
		return "", fmt.Errorf("selector is required")
	}
	switch input.Button {
	case "", "left", "right", "middle":
	default:
		return "", fmt.Errorf("invalid button value: %s (must be 'left', 'right', or 'middle')", input.Button)
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	info, err := t.manager.Click(input.Selector, input.Button, input.ClickCount, effectiveTimeout(t.manager, input.TimeoutMS))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Clicked element matching %q\n\nCurrent URL: %s\nCurrent title: %s", input.Selector, info.URL, info.Title), nil
}
