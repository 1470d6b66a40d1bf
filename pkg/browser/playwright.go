package browser

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"
)

const frameNavigatedEvent = "framenavigated"

// PlaywrightDriver launches Chromium through playwright-go. The playwright
// runtime is installed and started on first use and shared by every
// instance until Stop.
type PlaywrightDriver struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	skipInstall bool
}

// NewPlaywrightDriver creates a driver. With skipInstall the browsers must
// already be present on the machine.
func NewPlaywrightDriver(skipInstall bool) *PlaywrightDriver {
	return &PlaywrightDriver{skipInstall: skipInstall}
}

func (d *PlaywrightDriver) start() (*playwright.Playwright, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw != nil {
		return d.pw, nil
	}

	// Playwright's installer and driver are noisy; keep them off the agent's output.
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if !d.skipInstall {
		if err := playwright.Install(opts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	d.pw = pw
	return pw, nil
}

// Launch starts Chromium with a single context configured from opts.
func (d *PlaywrightDriver) Launch(opts LaunchOptions) (Instance, error) {
	pw, err := d.start()
	if err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		AcceptDownloads: playwright.Bool(true),
	}
	if opts.StorageStatePath != "" {
		contextOpts.StorageStatePath = playwright.String(opts.StorageStatePath)
	}

	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	if opts.Timeout > 0 {
		ms := float64(opts.Timeout.Milliseconds())
		context.SetDefaultTimeout(ms)
		context.SetDefaultNavigationTimeout(ms)
	}

	return &pwInstance{
		browser: browser,
		context: context,
		pages:   make(map[playwright.Page]*pwPage),
	}, nil
}

// Stop shuts down the playwright runtime. Instances must be closed first.
func (d *PlaywrightDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw == nil {
		return nil
	}
	err := d.pw.Stop()
	d.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type pwInstance struct {
	browser playwright.Browser
	context playwright.BrowserContext

	mu    sync.Mutex
	pages map[playwright.Page]*pwPage
}

// wrap returns the cached wrapper for p so that tabs compare equal across calls.
func (i *pwInstance) wrap(p playwright.Page) *pwPage {
	i.mu.Lock()
	defer i.mu.Unlock()

	if w, ok := i.pages[p]; ok {
		return w
	}
	w := &pwPage{page: p, context: i.context}
	i.pages[p] = w
	p.OnClose(func(playwright.Page) {
		i.mu.Lock()
		delete(i.pages, p)
		i.mu.Unlock()
	})
	return w
}

func (i *pwInstance) NewPage() (Page, error) {
	p, err := i.context.NewPage()
	if err != nil {
		return nil, err
	}
	return i.wrap(p), nil
}

func (i *pwInstance) Pages() []Page {
	raw := i.context.Pages()
	pages := make([]Page, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, i.wrap(p))
	}
	return pages
}

func (i *pwInstance) StorageState() ([]byte, error) {
	state, err := i.context.StorageState()
	if err != nil {
		return nil, err
	}
	return json.Marshal(state)
}

func (i *pwInstance) Close() error {
	var firstErr error
	if err := i.context.Close(); err != nil {
		firstErr = err
	}
	if err := i.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type pwPage struct {
	page    playwright.Page
	context playwright.BrowserContext

	cdpOnce sync.Once
	cdp     playwright.CDPSession
	cdpErr  error
}

func (p *pwPage) Goto(url string) (int, error) {
	resp, err := p.page.Goto(url)
	if err != nil {
		return 0, err
	}
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

func (p *pwPage) GoBack() error {
	_, err := p.page.GoBack()
	return err
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Title() (string, error) {
	return p.page.Title()
}

func (p *pwPage) AccessibilityTree() ([]byte, error) {
	p.cdpOnce.Do(func() {
		p.cdp, p.cdpErr = p.context.NewCDPSession(p.page)
	})
	if p.cdpErr != nil {
		return nil, fmt.Errorf("failed to open CDP session: %w", p.cdpErr)
	}

	result, err := p.cdp.Send("Accessibility.getFullAXTree", map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (p *pwPage) ByRole(role, name string) Element {
	opts := playwright.PageGetByRoleOptions{}
	if name != "" {
		opts.Name = name
		opts.Exact = playwright.Bool(true)
	}
	return &pwElement{locator: p.page.GetByRole(playwright.AriaRole(role), opts).First()}
}

func (p *pwPage) ByText(text string) Element {
	return &pwElement{locator: p.page.GetByText(text).First()}
}

func (p *pwPage) Evaluate(script string) error {
	_, err := p.page.Evaluate(script)
	return err
}

func (p *pwPage) Screenshot(path string, fullPage bool) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	return err
}

func (p *pwPage) PDF(path string) error {
	_, err := p.page.PDF(playwright.PagePdfOptions{
		Path: playwright.String(path),
	})
	return err
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}

func (p *pwPage) BringToFront() error {
	return p.page.BringToFront()
}

// OnMainFrameNavigated registers fn on the page's framenavigated event.
// cancel removes the listener; an event already being delivered is dropped.
func (p *pwPage) OnMainFrameNavigated(fn func(url string)) func() {
	var active atomic.Bool
	active.Store(true)

	handler := func(frame playwright.Frame) {
		if !active.Load() || frame.ParentFrame() != nil {
			return
		}
		fn(frame.URL())
	}
	p.page.On(frameNavigatedEvent, handler)

	return func() {
		if active.Swap(false) {
			p.page.RemoveListener(frameNavigatedEvent, handler)
		}
	}
}

type pwElement struct {
	locator playwright.Locator
}

func (e *pwElement) Count() (int, error) {
	return e.locator.Count()
}

func (e *pwElement) Click() error {
	return e.locator.Click()
}

func (e *pwElement) Fill(text string) error {
	return e.locator.Fill(text)
}

func (e *pwElement) Press(key string) error {
	return e.locator.Press(key)
}

func (e *pwElement) SelectOption(value string) error {
	_, err := e.locator.SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return err
}
