package browser

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/agent/tools"
	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

// ScreenshotTool saves a PNG of the page into the workspace.
type ScreenshotTool struct {
	sessionTool
}

// NewScreenshotTool creates a screenshot tool for the workspace.
func NewScreenshotTool(manager *core.Manager, workspace string) *ScreenshotTool {
	return &ScreenshotTool{sessionTool{manager, workspace}}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "browser_screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Save a PNG screenshot of the current page to the workspace and return its path."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"full_page": map[string]interface{}{
				"type":        "boolean",
				"description": "Capture the whole scrollable page instead of the viewport (default: false)",
			},
		},
		nil,
	)
}

// Execute captures the screenshot.
func (t *ScreenshotTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input struct {
		XMLName  xml.Name `xml:"arguments"`
		FullPage bool     `xml:"full_page"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		path, err := s.Screenshot(ctx, input.FullPage)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("Screenshot saved to %s", path), map[string]interface{}{"path": path}, nil
	})
}

// SavePDFTool prints the page to a PDF in the workspace downloads directory.
type SavePDFTool struct {
	sessionTool
}

// NewSavePDFTool creates a save-as-PDF tool for the workspace.
func NewSavePDFTool(manager *core.Manager, workspace string) *SavePDFTool {
	return &SavePDFTool{sessionTool{manager, workspace}}
}

func (t *SavePDFTool) Name() string { return "browser_save_pdf" }

func (t *SavePDFTool) Description() string {
	return "Print the current page to a PDF file in the workspace downloads directory. Works in headless mode only."
}

func (t *SavePDFTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute writes the PDF.
func (t *SavePDFTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	return t.withSession(ctx, func(s *core.Session) (string, map[string]interface{}, error) {
		info, err := s.SavePDF(ctx)
		if err != nil {
			return "", nil, err
		}

		pages := "page count unavailable"
		switch info.Pages {
		case 0:
		case 1:
			pages = "1 page"
		default:
			pages = fmt.Sprintf("%d pages", info.Pages)
		}
		return fmt.Sprintf("PDF saved to %s (%s)", info.Path, pages), map[string]interface{}{
			"path":  info.Path,
			"pages": info.Pages,
		}, nil
	})
}
