package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// TabsTool lists open tabs.
type TabsTool struct {
	sessionTool
}

// NewTabsTool creates a tab listing tool for the workspace.
func NewTabsTool(manager *core.Manager, workspace string) *TabsTool {
	return &TabsTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *TabsTool) Name() string {
	return "browser_tabs"
}

// Description returns the tool description.
func (t *TabsTool) Description() string {
	return "List the open browser tabs with their index, title and URL."
}

// Schema returns the tool's JSON schema.
func (t *TabsTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute lists the tabs.
func (t *TabsTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		tabs, err := s.Tabs(ctx)
		if err != nil {
			return "", nil, err
		}
		return renderTabs(tabs), map[string]interface{}{"tabs": len(tabs)}, nil
	})
}

// SwitchTabTool makes another tab the active one.
type SwitchTabTool struct {
	sessionTool
}

// NewSwitchTabTool creates a tab switching tool for the workspace.
func NewSwitchTabTool(manager *core.Manager, workspace string) *SwitchTabTool {
	return &SwitchTabTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *SwitchTabTool) Name() string {
	return "browser_switch_tab"
}

// Description returns the tool description.
func (t *SwitchTabTool) Description() string {
	return "Switch to the tab with the given index from browser_tabs. Refs are reset."
}

// Schema returns the tool's JSON schema.
func (t *SwitchTabTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"index": map[string]interface{}{
				"type":        "integer",
				"description": "Zero-based tab index",
			},
		},
		[]string{"index"},
	)
}

// Execute switches tabs.
func (t *SwitchTabTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Index   *int     `xml:"index"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.Index == nil {
		return "", nil, fmt.Errorf("index is required")
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		tab, err := s.SwitchTab(ctx, *input.Index)
		if err != nil {
			return "", nil, err
		}
		summary := fmt.Sprintf("Switched to tab [%d]", tab.Index)
		info := &core.PageInfo{URL: tab.URL, Title: tab.Title}
		return renderAction(summary, info, true), map[string]interface{}{"index": tab.Index, "url": tab.URL}, nil
	})
}
