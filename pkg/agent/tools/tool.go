// Package tools defines the tool contract and the registry that exposes
// named, schema-validated capabilities to the planner.
//
// Each tool is a {name, input schema, handler} record. The registry
// validates arguments against the declared schema before dispatch, and
// converts every failure mode into a descriptive observation string so that
// tool problems feed back into the planning loop instead of aborting it.
package tools

import (
	"context"
	"encoding/json"
)

// Tool represents a capability the planner can invoke during a job.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g. "browser_click")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters.
	// The schema must be a valid JSON Schema object describing the
	// argument object passed to Execute.
	Schema() map[string]interface{}

	// Execute runs the tool with the given JSON arguments and returns a
	// textual result. Errors are reported through the error return; the
	// registry turns them into observation strings for the planner.
	Execute(ctx context.Context, arguments json.RawMessage) (string, error)
}

// Definition is the planner-facing description of a registered tool.
type Definition struct {
	Name        string
	Description string
	Schema      map[string]interface{}
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields.
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
