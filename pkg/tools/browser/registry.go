package browser

import (
	"context"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// visibility is implemented by tools that are hidden until a browser runs.
type visibility interface {
	ShouldShow() bool
}

// ToolRegistry holds the browser tools bound to one workspace.
type ToolRegistry struct {
	manager *core.Manager
	tools   []tools.Tool
	byName  map[string]tools.Tool
}

// NewToolRegistry creates the browser tools for workspace.
func NewToolRegistry(manager *core.Manager, workspace string) *ToolRegistry {
	r := &ToolRegistry{
		manager: manager,
		tools: []tools.Tool{
			NewNavigateTool(manager, workspace),
			NewBackTool(manager, workspace),
			NewSnapshotTool(manager, workspace),
			NewClickTool(manager, workspace),
			NewTypeTool(manager, workspace),
			NewSelectTool(manager, workspace),
			NewScrollTool(manager, workspace),
			NewScreenshotTool(manager, workspace),
			NewTabsTool(manager, workspace),
			NewSwitchTabTool(manager, workspace),
			NewPageTextTool(manager, workspace),
			NewSavePDFTool(manager, workspace),
			NewCloseTool(manager, workspace),
		},
	}

	r.byName = make(map[string]tools.Tool, len(r.tools))
	for _, t := range r.tools {
		r.byName[t.Name()] = t
	}
	return r
}

// GetTools returns every browser tool.
func (r *ToolRegistry) GetTools() []tools.Tool {
	return r.tools
}

// VisibleTools returns the tools worth offering right now: only
// browser_navigate until a browser is running, then all of them.
func (r *ToolRegistry) VisibleTools() []tools.Tool {
	out := make([]tools.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		if v, ok := t.(visibility); ok && !v.ShouldShow() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Get returns the named tool.
func (r *ToolRegistry) Get(name string) (tools.Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Execute dispatches a parsed tool call.
func (r *ToolRegistry) Execute(ctx context.Context, call *tools.ToolCall) (string, map[string]interface{}, error) {
	t, ok := r.Get(call.ToolName)
	if !ok {
		return "", nil, fmt.Errorf("unknown browser tool: %s", call.ToolName)
	}
	return t.Execute(ctx, call.GetArgumentsXML())
}

// GetSessionManager returns the manager the tools run against.
func (r *ToolRegistry) GetSessionManager() *core.Manager {
	return r.manager
}
