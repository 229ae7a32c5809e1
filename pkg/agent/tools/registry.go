package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/webpilot/webpilot/pkg/types"
)

// Registry is the lookup table of tools available to the planner.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Registration happens once at
// startup, before any job runs, so no locking is needed afterwards.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}

	r.tools[name] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the sorted names of all registered tools.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the planner-facing catalog of all registered tools,
// in stable name order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.tools))
	for _, name := range r.Names() {
		tool := r.tools[name]
		defs = append(defs, Definition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Schema:      tool.Schema(),
		})
	}
	return defs
}

// Invoke executes one tool call and returns its observation text.
//
// This is the tool boundary: unknown tools, invalid arguments, execution
// errors, and panics all resolve to a descriptive string so the planner can
// see the failure and self-correct within the same job.
func (r *Registry) Invoke(ctx context.Context, call types.ToolCall) (observation string) {
	defer func() {
		if rec := recover(); rec != nil {
			observation = fmt.Sprintf("Error: tool %q panicked: %v", call.Name, rec)
		}
	}()

	tool, ok := r.Get(call.Name)
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s",
			call.Name, strings.Join(r.Names(), ", "))
	}

	if err := ValidateArgs(tool.Schema(), call.Arguments); err != nil {
		return fmt.Sprintf("Error: invalid arguments for tool %q: %v", call.Name, err)
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		return fmt.Sprintf("Error: tool %q failed: %v", call.Name, err)
	}
	return result
}

// ValidateArgs checks a raw JSON argument object against a tool schema:
// the payload must be a JSON object, every required property must be
// present, and known properties must match their declared primitive type.
func ValidateArgs(schema map[string]interface{}, raw json.RawMessage) error {
	args := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	for _, name := range requiredProps(schema) {
		if _, present := args[name]; !present {
			return fmt.Errorf("missing required property %q", name)
		}
	}

	properties, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}

	for name, value := range args {
		propSchema, known := properties[name].(map[string]interface{})
		if !known {
			continue
		}
		declared, _ := propSchema["type"].(string)
		if declared == "" {
			continue
		}
		if err := checkType(declared, value); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
	}
	return nil
}

// requiredProps reads the schema's required list, which is []string when
// built with BaseToolSchema and []interface{} when decoded from JSON.
func requiredProps(schema map[string]interface{}) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []interface{}:
		names := make([]string, 0, len(required))
		for _, v := range required {
			if name, ok := v.(string); ok {
				names = append(names, name)
			}
		}
		return names
	}
	return nil
}

func checkType(declared string, value interface{}) error {
	if value == nil {
		return nil
	}

	switch declared {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "integer", "number":
		// encoding/json decodes all JSON numbers to float64
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("expected %s, got %T", declared, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case "array":
		if _, ok := value.([]interface{}); !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	}
	return nil
}
