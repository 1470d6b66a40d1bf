package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// TypeTool fills a text field by ref.
type TypeTool struct {
	sessionTool
}

// NewTypeTool creates a type tool for the workspace.
func NewTypeTool(manager *core.Manager, workspace string) *TypeTool {
	return &TypeTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *TypeTool) Name() string {
	return "browser_type"
}

// Description returns the tool description.
func (t *TypeTool) Description() string {
	return "Replace the contents of a text field with the given text, optionally pressing Enter afterwards to submit. Refs are reset only when Enter is pressed."
}

// Schema returns the tool's JSON schema.
func (t *TypeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"ref": refProperty,
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to enter",
			},
			"press_enter": map[string]interface{}{
				"type":        "boolean",
				"description": "Press Enter after typing (default: false)",
			},
		},
		[]string{"ref", "text"},
	)
}

// Execute fills the field.
func (t *TypeTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName    xml.Name `xml:"arguments"`
		Ref        int      `xml:"ref"`
		Text       string   `xml:"text"`
		PressEnter bool     `xml:"press_enter"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := requireRef(input.Ref); err != nil {
		return "", nil, err
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		target := describeNode(input.Ref, s.Refs()[input.Ref])
		info, err := s.Type(ctx, input.Ref, input.Text, input.PressEnter)
		if err != nil {
			return "", nil, err
		}

		summary := fmt.Sprintf("Typed %d characters into %s", len([]rune(input.Text)), target)
		if input.PressEnter {
			summary += " and pressed Enter"
		}
		return renderAction(summary, info, input.PressEnter), map[string]interface{}{"ref": input.Ref}, nil
	})
}
