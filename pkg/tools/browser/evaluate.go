package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

const maxEvaluateResult = 4000

// EvaluateTool runs a JavaScript expression in the page.
type EvaluateTool struct {
	manager *Manager
}

// NewEvaluateTool creates a new evaluate tool.
func NewEvaluateTool(manager *Manager) *EvaluateTool {
	return &EvaluateTool{manager: manager}
}

// Name returns the tool name.
func (t *EvaluateTool) Name() string {
	return "browser_evaluate"
}

// Description returns the tool description.
func (t *EvaluateTool) Description() string {
	return "Evaluate a JavaScript expression on the current page and return its result as JSON. Useful for reading values the other tools cannot reach."
}

// Schema returns the tool's JSON schema.
func (t *EvaluateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"expression": map[string]interface{}{
				"type":        "string",
				"description": "JavaScript expression to evaluate, e.g. document.querySelectorAll('a').length",
			},
		},
		[]string{"expression"},
	)
}

type evaluateInput struct {
	Expression string `json:"expression"`
}

// Execute evaluates the expression.
func (t *EvaluateTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input evaluateInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}

	if input.Expression == "" {
		return "", fmt.Errorf("expression is required")
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	result, err := t.manager.Evaluate(input.Expression)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Result: %s", truncateString(result, maxEvaluateResult)), nil
}
