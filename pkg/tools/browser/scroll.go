package browser

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// ScrollTool scrolls the page by a viewport or half a viewport.
type ScrollTool struct {
	sessionTool
}

// NewScrollTool creates a scroll tool for the workspace.
func NewScrollTool(manager *core.Manager, workspace string) *ScrollTool {
	return &ScrollTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *ScrollTool) Name() string {
	return "browser_scroll"
}

// Description returns the tool description.
func (t *ScrollTool) Description() string {
	return "Scroll the page up or down by one viewport height, or by half of one."
}

// Schema returns the tool's JSON schema.
func (t *ScrollTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"up", "down"},
				"description": "Scroll direction",
			},
			"amount": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"page", "half"},
				"description": "'page' (default) for a full viewport, 'half' for half of one",
			},
		},
		[]string{"direction"},
	)
}

// Execute scrolls the page.
func (t *ScrollTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName   xml.Name `xml:"arguments"`
		Direction string   `xml:"direction"`
		Amount    string   `xml:"amount"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	direction := strings.ToLower(strings.TrimSpace(input.Direction))
	if direction == "" {
		return "", nil, fmt.Errorf("direction is required")
	}
	amount := strings.ToLower(strings.TrimSpace(input.Amount))

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		delta, err := s.Scroll(ctx, direction, amount)
		if err != nil {
			return "", nil, err
		}
		pixels := delta
		if pixels < 0 {
			pixels = -pixels
		}
		return fmt.Sprintf("Scrolled %s %d pixels.", direction, pixels), map[string]interface{}{"delta": delta}, nil
	})
}
