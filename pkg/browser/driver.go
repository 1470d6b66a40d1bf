package browser

import "time"

// Driver starts browser instances. The playwright implementation is
// PlaywrightDriver; tests substitute an in-memory driver.
type Driver interface {
	Launch(opts LaunchOptions) (Instance, error)
}

// LaunchOptions configures a browser instance and its single context.
type LaunchOptions struct {
	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration

	// StorageStatePath, when set, seeds cookies and origins from a file
	// previously written by Instance.StorageState.
	StorageStatePath string
}

// Instance is a running browser with one context.
type Instance interface {
	NewPage() (Page, error)

	// Pages lists open tabs in creation order. The same tab is always
	// returned as the same Page value.
	Pages() []Page

	// StorageState returns the context's cookies and origins as JSON.
	StorageState() ([]byte, error)

	Close() error
}

// Page is one browser tab.
type Page interface {
	// Goto navigates and returns the HTTP status of the main response,
	// or 0 when there was none.
	Goto(url string) (int, error)
	GoBack() error
	URL() string
	Title() (string, error)

	// AccessibilityTree returns the raw Accessibility.getFullAXTree result.
	AccessibilityTree() ([]byte, error)

	ByRole(role, name string) Element
	ByText(text string) Element

	Evaluate(script string) error
	Screenshot(path string, fullPage bool) error
	PDF(path string) error
	Content() (string, error)
	BringToFront() error

	// OnMainFrameNavigated registers fn for committed main-frame
	// navigations. Calling cancel stops further deliveries.
	OnMainFrameNavigated(fn func(url string)) (cancel func())
}

// Element is a lazily resolved handle to the first element matching a query.
type Element interface {
	Count() (int, error)
	Click() error
	Fill(text string) error
	Press(key string) error
	SelectOption(value string) error
}
