package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// PageInfoTool reports the current page URL and title.
type PageInfoTool struct {
	manager *Manager
}

// NewPageInfoTool creates a new page info tool.
func NewPageInfoTool(manager *Manager) *PageInfoTool {
	return &PageInfoTool{manager: manager}
}

// Name returns the tool name.
func (t *PageInfoTool) Name() string {
	return "browser_page_info"
}

// Description returns the tool description.
func (t *PageInfoTool) Description() string {
	return "Report the URL and title of the page the browser is currently on."
}

// Schema returns the tool's JSON schema.
func (t *PageInfoTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, []string{})
}

// Execute reads the page info.
func (t *PageInfoTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	info, err := t.manager.Info()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("URL: %s\nTitle: %s", info.URL, info.Title), nil
}
