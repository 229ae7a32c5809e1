package browser

import (
	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// RegisterAll registers every browser tool against the registry. All tools
// share the one manager, so their page operations are serialized.
func RegisterAll(registry *tools.Registry, manager *Manager, guard *HostGuard) error {
	all := []tools.Tool{
		NewNavigateTool(manager, guard),
		NewClickTool(manager),
		NewTypeTool(manager),
		NewExtractTool(manager),
		NewWaitTool(manager),
		NewSearchTool(manager),
		NewEvaluateTool(manager),
		NewScreenshotTool(manager, ""),
		NewBackTool(manager),
		NewPageInfoTool(manager),
	}
	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
