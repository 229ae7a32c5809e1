package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// ExtractTool reads the current page as cleaned readable text.
type ExtractTool struct {
	manager *Manager
}

// NewExtractTool creates a new extract tool.
func NewExtractTool(manager *Manager) *ExtractTool {
	return &ExtractTool{manager: manager}
}

// Name returns the tool name.
func (t *ExtractTool) Name() string {
	return "browser_extract"
}

// Description returns the tool description.
func (t *ExtractTool) Description() string {
	return "Extract the readable text content of the current page. Scripts, styles, and markup noise are stripped; link targets are kept inline."
}

// Schema returns the tool's JSON schema.
func (t *ExtractTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"max_length": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of characters to return (default 10000)",
			},
		},
		[]string{},
	)
}

type extractInput struct {
	MaxLength int `json:"max_length"`
}

// Execute extracts the page text.
func (t *ExtractTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input extractInput
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &input); err != nil {
			return "", fmt.Errorf("invalid parameters: %w", err)
		}
	}
	if input.MaxLength <= 0 {
		input.MaxLength = DefaultMaxLength
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	rawHTML, err := t.manager.Content()
	if err != nil {
		return "", err
	}
	info, err := t.manager.Info()
	if err != nil {
		return "", err
	}

	cleaned, err := cleanPage(rawHTML, input.MaxLength)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Page: %s\nURL: %s\n", cleaned.Title, info.URL)
	if cleaned.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", cleaned.Description)
	}
	b.WriteString("\n")
	b.WriteString(cleaned.Text)
	if cleaned.Truncated {
		fmt.Fprintf(&b, "\n\n[Content truncated at %d characters]", input.MaxLength)
	}
	return b.String(), nil
}
