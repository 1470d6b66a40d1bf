// Package browser exposes a workspace's browser session to the agent as
// tools.
//
// The agent works from snapshots: browser_snapshot lists the page's
// accessibility tree with a numbered ref on every interactive element, and
// browser_click, browser_type and browser_select act on those refs. Actions
// that change the page invalidate the refs, so the usual loop is
//
//  1. browser_navigate to a URL
//  2. browser_snapshot to read the page
//  3. act on a ref
//  4. snapshot again when the result says refs were reset
//
// Session failures (blocked domains, stale refs, driver errors) are returned
// to the agent as text results. Execute only returns a Go error when the
// tool call itself is malformed.
package browser
