// Package browser gives an agent a browser it can drive through small
// integer refs instead of selectors.
//
// A Session owns one Chromium page for one workspace. Snapshot renders the
// page's accessibility tree as indented text and numbers every interactive
// element; Click, Type and Select then address elements by those numbers:
//
//	[1] Sign In (button)
//	[2] Email (textbox)
//
// Refs belong to the latest snapshot only. Navigation, clicks, Enter
// submissions and tab switches discard them, and an action on an unknown
// ref fails with KindInvalidRef so the caller knows to snapshot again.
//
// Every navigation is checked against the session's domain policy before
// it starts, and the final URL is checked again after redirects. The
// session also watches main-frame navigations on the active tab and logs
// any that land on a disallowed host.
//
// All failures are *Error values carrying a Kind. Rendering them for a
// model is left to the tool layer in pkg/tools/browser.
//
// Screenshots, PDFs and the persisted cookie jar are written inside the
// workspace; paths returned to callers are workspace-relative.
package browser
