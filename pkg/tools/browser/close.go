package browser

import (
	"context"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// CloseTool shuts the workspace's browser down.
type CloseTool struct {
	sessionTool
}

// NewCloseTool creates a close tool for the workspace.
func NewCloseTool(manager *core.Manager, workspace string) *CloseTool {
	return &CloseTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *CloseTool) Name() string {
	return "browser_close"
}

// Description returns the tool description.
func (t *CloseTool) Description() string {
	return "Close the browser. Cookies are saved first when persistence is enabled. The next browser_navigate starts a fresh browser."
}

// Schema returns the tool's JSON schema.
func (t *CloseTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute closes the session if it is running.
func (t *CloseTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	s, ok := t.manager.Lookup(t.workspace)
	if !ok || s.State() != core.StateActive {
		return "Browser is not running.", nil, nil
	}
	if err := s.Close(ctx); err != nil {
		return renderError(err), errorMetadata(err), nil
	}
	return "Browser closed.", map[string]interface{}{"session": s.ID()}, nil
}
