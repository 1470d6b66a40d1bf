package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

const (
	minPageTextLength = 100
	maxPageTextLength = 100000
)

// PageTextTool returns the page's cleaned markup for reading long content.
type PageTextTool struct {
	sessionTool
}

// NewPageTextTool creates a page text tool for the workspace.
func NewPageTextTool(manager *core.Manager, workspace string) *PageTextTool {
	return &PageTextTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *PageTextTool) Name() string {
	return "browser_page_text"
}

// Description returns the tool description.
func (t *PageTextTool) Description() string {
	return "Read the page content as simplified HTML with scripts, styles and embeds removed. Use it for articles and tables; use browser_snapshot to find elements to act on."
}

// Schema returns the tool's JSON schema.
func (t *PageTextTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"max_length": map[string]interface{}{
				"type":        "integer",
				"description": fmt.Sprintf("Maximum characters to return (%d-%d, default %d)", minPageTextLength, maxPageTextLength, core.DefaultPageTextLength),
			},
		},
		nil,
	)
}

// Execute extracts the page text.
func (t *PageTextTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName   xml.Name `xml:"arguments"`
		MaxLength *int     `xml:"max_length"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	maxLength := core.DefaultPageTextLength
	if input.MaxLength != nil {
		if *input.MaxLength < minPageTextLength || *input.MaxLength > maxPageTextLength {
			return "", nil, fmt.Errorf("max_length must be between %d and %d", minPageTextLength, maxPageTextLength)
		}
		maxLength = *input.MaxLength
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		text, err := s.PageText(ctx, maxLength)
		if err != nil {
			return "", nil, err
		}
		return renderPageText(text, maxLength), map[string]interface{}{
			"url":       text.URL,
			"length":    len(text.HTML),
			"truncated": text.Truncated,
		}, nil
	})
}
