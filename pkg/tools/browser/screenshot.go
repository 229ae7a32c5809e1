package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// ScreenshotTool captures the current page to a PNG file.
type ScreenshotTool struct {
	manager *Manager
	dir     string
}

// NewScreenshotTool creates a new screenshot tool. Captures are written
// under dir; when dir is empty they go to ~/.webpilot/screenshots.
func NewScreenshotTool(manager *Manager, dir string) *ScreenshotTool {
	return &ScreenshotTool{
		manager: manager,
		dir:     dir,
	}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "browser_screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Capture a screenshot of the current page to a PNG file and return its path."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"full_page": map[string]interface{}{
				"type":        "boolean",
				"description": "Capture the full scrollable page instead of the viewport (default false)",
			},
		},
		[]string{},
	)
}

type screenshotInput struct {
	FullPage bool `json:"full_page"`
}

// Execute captures the screenshot.
func (t *ScreenshotTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input screenshotInput
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid parameters: %w", err)
		}
	}

	dir, err := t.captureDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.png", uuid.New().String()))

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	if err := t.manager.Screenshot(path, input.FullPage); err != nil {
		return "", err
	}
	return fmt.Sprintf("Screenshot saved to %s", path), nil
}

func (t *ScreenshotTool) captureDir() (string, error) {
	dir := t.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".webpilot", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return dir, nil
}
