package browser

import (
	"context"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// SnapshotTool lists the current page's accessibility tree with element refs.
type SnapshotTool struct {
	sessionTool
}

// NewSnapshotTool creates a snapshot tool for the workspace.
func NewSnapshotTool(manager *core.Manager, workspace string) *SnapshotTool {
	return &SnapshotTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *SnapshotTool) Name() string {
	return "browser_snapshot"
}

// Description returns the tool description.
func (t *SnapshotTool) Description() string {
	return "Read the current page as an indented outline. Interactive elements are numbered like [3]; pass that number as ref to browser_click, browser_type or browser_select. Refs from older snapshots stop working after the page changes."
}

// Schema returns the tool's JSON schema.
func (t *SnapshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute takes a snapshot and replaces the session's refs.
func (t *SnapshotTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return "", nil, err
		}
		return renderSnapshot(snap), map[string]interface{}{
			"url":       snap.URL,
			"refs":      len(snap.Refs),
			"tokens":    snap.Tokens,
			"truncated": snap.Truncated,
		}, nil
	})
}
