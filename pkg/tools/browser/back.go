package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// BackTool navigates to the previous page in history.
type BackTool struct {
	manager *Manager
}

// NewBackTool creates a new back tool.
func NewBackTool(manager *Manager) *BackTool {
	return &BackTool{manager: manager}
}

// Name returns the tool name.
func (t *BackTool) Name() string {
	return "browser_back"
}

// Description returns the tool description.
func (t *BackTool) Description() string {
	return "Go back to the previous page in the browser history."
}

// Schema returns the tool's JSON schema.
func (t *BackTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"timeout_ms": map[string]interface{}{
				"type":        "number",
				"description": "Navigation timeout in milliseconds (default 30000)",
			},
		},
		[]string{},
	)
}

type backInput struct {
	TimeoutMS float64 `json:"timeout_ms"`
}

// Execute goes back one page.
func (t *BackTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input backInput
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid parameters: %w", err)
		}
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	info, err := t.manager.Back(effectiveTimeout(t.manager, input.TimeoutMS))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Went back\n\nCurrent URL: %s\nCurrent title: %s", info.URL, info.Title), nil
}
