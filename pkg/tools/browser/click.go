package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

var refProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Element ref from the latest browser_snapshot, e.g. 3 for [3]",
}

func requireRef(ref int) error {
	if ref <= 0 {
		return fmt.Errorf("ref is required and must be a positive element number")
	}
	return nil
}

// ClickTool clicks an element by ref.
type ClickTool struct {
	sessionTool
}

// NewClickTool creates a click tool for the workspace.
func NewClickTool(manager *core.Manager, workspace string) *ClickTool {
	return &ClickTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "browser_click"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click a link, button or other interactive element by its snapshot ref. Refs are reset after a successful click."
}

// Schema returns the tool's JSON schema.
func (t *ClickTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{"ref": refProperty},
		[]string{"ref"},
	)
}

// Execute clicks the element.
func (t *ClickTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Ref     int      `xml:"ref"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := requireRef(input.Ref); err != nil {
		return "", nil, err
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		target := describeNode(input.Ref, s.Refs()[input.Ref])
		info, err := s.Click(ctx, input.Ref)
		if err != nil {
			return "", nil, err
		}
		return renderAction("Clicked "+target, info, true), map[string]interface{}{"ref": input.Ref, "url": info.URL}, nil
	})
}
