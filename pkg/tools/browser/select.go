package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// SelectTool picks an option in a dropdown by ref.
type SelectTool struct {
	sessionTool
}

// NewSelectTool creates a select tool for the workspace.
func NewSelectTool(manager *core.Manager, workspace string) *SelectTool {
	return &SelectTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *SelectTool) Name() string {
	return "browser_select"
}

// Description returns the tool description.
func (t *SelectTool) Description() string {
	return "Choose an option in a dropdown (combobox or listbox) by its value or visible label."
}

// Schema returns the tool's JSON schema.
func (t *SelectTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"ref": refProperty,
			"value": map[string]interface{}{
				"type":        "string",
				"description": "Option value or label to select",
			},
		},
		[]string{"ref", "value"},
	)
}

// Execute selects the option.
func (t *SelectTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName xml.Name `xml:"arguments"`
		Ref     int      `xml:"ref"`
		Value   string   `xml:"value"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := requireRef(input.Ref); err != nil {
		return "", nil, err
	}
	if input.Value == "" {
		return "", nil, fmt.Errorf("value is required")
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		target := describeNode(input.Ref, s.Refs()[input.Ref])
		info, err := s.Select(ctx, input.Ref, input.Value)
		if err != nil {
			return "", nil, err
		}
		summary := fmt.Sprintf("Selected %q in %s", input.Value, target)
		return renderAction(summary, info, false), map[string]interface{}{"ref": input.Ref, "value": input.Value}, nil
	})
}
