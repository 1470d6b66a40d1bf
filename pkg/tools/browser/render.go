package browser

import (
	"errors"
	"fmt"
	"strings"

	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/browser/snapshot"
)

// renderError turns a session failure into the text the agent sees.
func renderError(err error) string {
	var be *core.Error
	if !errors.As(err, &be) {
		return fmt.Sprintf("Browser error: %v", err)
	}

	switch be.Kind {
	case core.KindNotActive:
		return "Browser not active. Use browser_navigate to open a page first."
	case core.KindBlocked:
		return fmt.Sprintf("Navigation blocked: %s is not allowed by the domain policy.", be.URL)
	case core.KindRedirectBlocked:
		return fmt.Sprintf("Navigation blocked: the page redirected to %s, which is not allowed by the domain policy. Navigate to an allowed page before continuing.", be.URL)
	case core.KindInvalidRef:
		return fmt.Sprintf("Invalid ref [%d]. Take a new snapshot with browser_snapshot to get current refs.", be.Ref)
	case core.KindInvalidArgument:
		return fmt.Sprintf("Invalid argument: %v", be.Err)
	case core.KindUnavailable:
		return fmt.Sprintf("Browser unavailable: %v", be.Err)
	}
	return fmt.Sprintf("Error: %v", be.Err)
}

func errorMetadata(err error) map[string]interface{} {
	return map[string]interface{}{
		"error_kind": string(core.KindOf(err)),
		"retryable":  core.IsRetryable(err),
	}
}

func describeNode(ref int, n *snapshot.Node) string {
	if n == nil {
		return fmt.Sprintf("[%d]", ref)
	}
	if n.Name == "" {
		return fmt.Sprintf("[%d] (%s)", ref, n.Role)
	}
	return fmt.Sprintf("[%d] %s (%s)", ref, n.Name, n.Role)
}

func writePage(b *strings.Builder, info *core.PageInfo) {
	if info == nil {
		return
	}
	fmt.Fprintf(b, "\nPage: %s\nURL: %s", info.Title, info.URL)
	if info.Status != 0 {
		fmt.Fprintf(b, "\nStatus: %d", info.Status)
	}
}

func renderAction(summary string, info *core.PageInfo, refsReset bool) string {
	var b strings.Builder
	b.WriteString(summary)
	writePage(&b, info)
	if refsReset {
		b.WriteString("\n\nRefs have been reset. Take a new snapshot before the next action.")
	}
	return b.String()
}

func renderSnapshot(snap *core.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page: %s\nURL: %s\nInteractive elements: %d\n\n", snap.Title, snap.URL, len(snap.Refs))
	if snap.Text == "" {
		b.WriteString("(page has no accessible content)")
	} else {
		b.WriteString(snap.Text)
	}
	if snap.Truncated {
		fmt.Fprintf(&b, "\n\n[Snapshot truncated to %d tokens. All %d refs remain usable.]", snap.Tokens, len(snap.Refs))
	}
	return b.String()
}

func renderTabs(tabs []core.TabInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Open tabs (%d):", len(tabs))
	for _, tab := range tabs {
		fmt.Fprintf(&b, "\n  [%d] %s - %s", tab.Index, tab.Title, tab.URL)
		if tab.Active {
			b.WriteString(" (active)")
		}
	}
	return b.String()
}

func renderPageText(text *core.PageText, maxLength int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page: %s\nURL: %s\n", text.Title, text.URL)
	if text.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", text.Description)
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(text.HTML))
	if text.Truncated {
		fmt.Fprintf(&b, "\n\n[Content truncated at %d characters]", maxLength)
	}
	return b.String()
}
