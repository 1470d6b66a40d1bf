package browser

import (
	"time"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/browser/snapshot"
)

// State is a session's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// PageInfo describes the page after an action.
type PageInfo struct {
	URL   string
	Title string

	// Status is the HTTP status of a navigation, 0 for other actions.
	Status int
}

// Snapshot is the accessibility view of the current page.
type Snapshot struct {
	URL    string
	Title  string
	Text   string
	Refs   map[int]*snapshot.Node
	Tokens int

	// Truncated is set when Text was cut to fit the token limit.
	// Refs always cover the full page.
	Truncated bool
}

// TabInfo describes one open tab.
type TabInfo struct {
	Index  int
	URL    string
	Title  string
	Active bool
}

// PageText is the cleaned markup of the current page.
type PageText struct {
	URL         string
	Title       string
	Description string
	HTML        string
	Truncated   bool
}

// PDFInfo describes a page printed to PDF.
type PDFInfo struct {
	Path  string // workspace-relative
	Pages int
}

// Status summarizes a session for listings.
type Status struct {
	ID         string
	Workspace  string
	State      State
	URL        string
	Refs       int
	CreatedAt  time.Time
	LastUsedAt time.Time
}
