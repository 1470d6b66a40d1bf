package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// NavigateTool opens a URL, launching the browser if needed.
type NavigateTool struct {
	sessionTool
}

// NewNavigateTool creates a navigate tool for the workspace.
func NewNavigateTool(manager *core.Manager, workspace string) *NavigateTool {
	return &NavigateTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Open a URL in the browser. Starts the browser if it is not running. Only domains allowed by the workspace policy can be opened."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute URL including the scheme, e.g. https://example.com",
			},
		},
		[]string{"url"},
	)
}

type navigateInput struct {
	XMLName xml.Name `xml:"arguments"`
	URL     string   `xml:"url"`
}

func parseNavigateInput(argsXML []byte) (*navigateInput, error) {
	var input navigateInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	input.URL = strings.TrimSpace(input.URL)
	if input.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	return &input, nil
}

// Execute navigates to the requested URL.
func (t *NavigateTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	input, err := parseNavigateInput(argsXML)
	if err != nil {
		return "", nil, err
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		info, err := s.Navigate(ctx, input.URL)
		if err != nil {
			return "", nil, err
		}
		out := renderAction(fmt.Sprintf("Navigated to %s", info.URL), info, false)
		out += "\n\nUse browser_snapshot to see the page's interactive elements."
		return out, map[string]interface{}{"url": info.URL, "status": info.Status}, nil
	})
}

// ShouldShow returns true; navigation is how the browser gets started.
func (t *NavigateTool) ShouldShow() bool {
	return true
}

// GeneratePreview shows the target URL and the domain policy's verdict.
func (t *NavigateTool) GeneratePreview(ctx context.Context, argsXML []byte) (*tools.ToolPreview, error) {
	input, err := parseNavigateInput(argsXML)
	if err != nil {
		return nil, err
	}
	s, err := t.session()
	if err != nil {
		return nil, err
	}

	decision := s.Policy().Check(input.URL)
	return &tools.ToolPreview{
		Type:        tools.PreviewTypeNavigation,
		Title:       "Open Web Page",
		Description: fmt.Sprintf("The browser will load %s", input.URL),
		Content:     fmt.Sprintf("URL: %s\nDomain policy: %s", input.URL, decision),
		Metadata: map[string]interface{}{
			"url":      input.URL,
			"decision": string(decision),
		},
	}, nil
}

// BackTool goes back one step in the page history.
type BackTool struct {
	sessionTool
}

// NewBackTool creates a back tool for the workspace.
func NewBackTool(manager *core.Manager, workspace string) *BackTool {
	return &BackTool{sessionTool{manager, workspace}}
}

func (t *BackTool) Name() string { return "browser_back" }

func (t *BackTool) Description() string {
	return "Go back to the previous page in the browser history."
}

func (t *BackTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute navigates back.
func (t *BackTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		info, err := s.Back(ctx)
		if err != nil {
			return "", nil, err
		}
		return renderAction("Went back", info, true), map[string]interface{}{"url": info.URL}, nil
	})
}
