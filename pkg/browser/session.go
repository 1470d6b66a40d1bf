package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/johnsosoka/OpenPaw-sub003/pkg/browser/snapshot"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/config"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/llm/tokenizer"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/logging"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/security/domain"
	"github.com/johnsosoka/OpenPaw-sub003/pkg/security/workspace"
)

const tracerName = "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records operations into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithTokenizer counts snapshot tokens with tok instead of the estimate.
func WithTokenizer(tok *tokenizer.Tokenizer) Option {
	return func(s *Session) { s.tokenizer = tok }
}

// WithTracer overrides the otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) { s.tracer = t }
}

// WithClock overrides the time source used for file names and idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session drives one browser page for one workspace: policy-gated
// navigation plus actions addressed by the refs of the latest snapshot.
//
// Operations are serialized. A failed operation leaves the session usable
// and the ref map as it was.
type Session struct {
	id          string
	cfg         config.BrowserConfig
	driver      Driver
	policy      *domain.Policy
	transformer *snapshot.Transformer
	guard       *workspace.Guard
	cookies     *CookieJar
	tokenizer   *tokenizer.Tokenizer
	logger      *logging.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	now         func() time.Time
	createdAt   time.Time
	lastUsed    atomic.Int64 // unix nanos

	mu        sync.Mutex
	state     State
	inst      Instance
	page      Page
	refs      map[int]*snapshot.Node
	unobserve func()
}

// NewSession validates cfg and prepares a session. No browser is started
// until Launch or the first Navigate.
func NewSession(cfg config.BrowserConfig, driver Driver, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid browser config: %w", err)
	}
	if driver == nil {
		return nil, fmt.Errorf("browser driver is required")
	}

	guard, err := workspace.NewGuard(cfg.WorkspacePath)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:          uuid.New().String(),
		cfg:         cfg,
		driver:      driver,
		policy:      domain.New(cfg.AllowedDomains, cfg.BlockedDomains),
		transformer: snapshot.NewTransformer(cfg.MaxSnapshotDepth),
		guard:       guard,
		now:         time.Now,
		refs:        make(map[int]*snapshot.Node),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard("browser")
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	if cfg.PersistCookies {
		if s.cookies, err = NewCookieJar(guard); err != nil {
			return nil, err
		}
	}

	s.createdAt = s.now()
	s.touch()
	return s, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Policy returns the domain policy gating navigation.
func (s *Session) Policy() *domain.Policy { return s.policy }

// LastUsed returns when an operation last ran.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a summary for listings.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		ID:         s.id,
		Workspace:  s.guard.Root(),
		State:      s.state,
		Refs:       len(s.refs),
		CreatedAt:  s.createdAt,
		LastUsedAt: s.LastUsed(),
	}
	if s.page != nil {
		st.URL = s.page.URL()
	}
	return st
}

// run serializes op, wraps it in a span and records its outcome.
func (s *Session) run(ctx context.Context, op string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := s.tracer.Start(ctx, "browser."+op, trace.WithAttributes(attrs...))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = fn(ctx)
	}
	s.metrics.recordOperation(op, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("browser.error_kind", string(KindOf(err))))
		if IsPolicyError(err) || KindOf(err) == KindInvalidRef {
			s.logger.Warnf("%v", err)
		} else {
			s.logger.Errorf("%v", err)
		}
	}
	return err
}

// Launch starts the browser. It is a no-op on an active session and
// starts a fresh browser on a closed one.
func (s *Session) Launch(ctx context.Context) error {
	return s.run(ctx, "launch", func(ctx context.Context) error {
		return s.launchLocked()
	})
}

func (s *Session) launchLocked() error {
	if s.state == StateActive {
		return nil
	}

	opts := LaunchOptions{
		Headless:       s.cfg.Headless,
		ViewportWidth:  s.cfg.ViewportWidth,
		ViewportHeight: s.cfg.ViewportHeight,
		Timeout:        s.cfg.Timeout(),
	}
	if s.cookies != nil {
		state, err := s.cookies.Load()
		switch {
		case err != nil:
			s.logger.Warnf("ignoring saved storage state: %v", err)
		case state != nil:
			opts.StorageStatePath = s.cookies.Path()
			s.logger.Debugf("restoring storage state from %s", s.cookies.Path())
		}
	}

	inst, err := s.driver.Launch(opts)
	if err != nil {
		return &Error{Kind: KindUnavailable, Op: "launch", Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}

	page, err := inst.NewPage()
	if err != nil {
		_ = inst.Close()
		return &Error{Kind: KindUnavailable, Op: "launch", Err: fmt.Errorf("%w: failed to open page: %v", ErrUnavailable, err)}
	}

	s.inst = inst
	s.state = StateActive
	s.bind(page)
	s.clearRefs()
	s.metrics.sessionLaunched()
	s.logger.Infof("browser launched (session %s, headless=%t, workspace %s)", s.id, s.cfg.Headless, s.guard.Root())
	return nil
}

// bind makes page the active page and moves the navigation observer to it.
func (s *Session) bind(page Page) {
	if s.unobserve != nil {
		s.unobserve()
		s.unobserve = nil
	}
	s.page = page
	s.unobserve = page.OnMainFrameNavigated(s.observeNavigation)
}

// observeNavigation runs on the driver's event goroutine and must not take s.mu.
func (s *Session) observeNavigation(url string) {
	if url == "" || url == "about:blank" {
		return
	}
	if d := s.policy.Check(url); !d.Allowed() {
		s.metrics.recordDisallowedNavigation()
		s.logger.Warnf("page navigated to disallowed URL %s (%s)", url, d)
	}
}

func (s *Session) clearRefs() {
	if len(s.refs) > 0 {
		s.refs = make(map[int]*snapshot.Node)
	}
}

func (s *Session) requireActive(op string) error {
	if s.state != StateActive || s.page == nil {
		return notActive(op)
	}
	return nil
}

func (s *Session) pageInfo(status int) *PageInfo {
	title, err := s.page.Title()
	if err != nil {
		s.logger.Debugf("failed to read page title: %v", err)
	}
	return &PageInfo{URL: s.page.URL(), Title: title, Status: status}
}

// Navigate opens rawURL after checking it against the domain policy,
// launching the browser first if needed. A redirect that lands on a
// disallowed URL is reported as KindRedirectBlocked; the page has changed
// by then, so the ref map is cleared in that case too.
func (s *Session) Navigate(ctx context.Context, rawURL string) (*PageInfo, error) {
	var info *PageInfo
	err := s.run(ctx, "navigate", func(ctx context.Context) error {
		decision := s.policy.Check(rawURL)
		s.metrics.recordDecision(string(decision))
		if !decision.Allowed() {
			return &Error{Kind: KindBlocked, Op: "navigate", URL: rawURL, Err: ErrBlocked}
		}

		if err := s.launchLocked(); err != nil {
			return err
		}

		status, err := s.page.Goto(rawURL)
		if err != nil {
			e := driverError("navigate", err)
			e.URL = rawURL
			return e
		}

		final := s.page.URL()
		if final != rawURL && !s.policy.IsAllowed(final) {
			s.clearRefs()
			return &Error{Kind: KindRedirectBlocked, Op: "navigate", URL: final, Err: ErrRedirectBlocked}
		}

		s.clearRefs()
		info = s.pageInfo(status)
		return nil
	}, attribute.String("browser.url", rawURL))
	return info, err
}

// Back goes one step back in history.
func (s *Session) Back(ctx context.Context) (*PageInfo, error) {
	var info *PageInfo
	err := s.run(ctx, "back", func(ctx context.Context) error {
		if err := s.requireActive("back"); err != nil {
			return err
		}
		if err := s.page.GoBack(); err != nil {
			return driverError("back", err)
		}
		s.clearRefs()
		info = s.pageInfo(0)
		return nil
	})
	return info, err
}

// Snapshot reads the accessibility tree, replaces the ref map with the new
// refs and returns the rendered listing.
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := s.run(ctx, "snapshot", func(ctx context.Context) error {
		if err := s.requireActive("snapshot"); err != nil {
			return err
		}

		raw, err := s.page.AccessibilityTree()
		if err != nil {
			return driverError("snapshot", err)
		}
		root, err := snapshot.ParseCDPTree(raw)
		if err != nil {
			return driverError("snapshot", err)
		}

		result := s.transformer.Transform(root)
		s.refs = result.Refs
		s.metrics.recordSnapshot(result.Count())

		text := result.Text
		truncated := false
		if s.cfg.MaxSnapshotTokens > 0 {
			text, truncated = s.tokenizer.Truncate(text, s.cfg.MaxSnapshotTokens)
		}

		info := s.pageInfo(0)
		snap = &Snapshot{
			URL:       info.URL,
			Title:     info.Title,
			Text:      text,
			Refs:      copyRefs(result.Refs),
			Tokens:    s.tokenizer.Count(text),
			Truncated: truncated,
		}
		s.logger.Debugf("snapshot of %s: %d refs, %d tokens", info.URL, result.Count(), snap.Tokens)
		return nil
	})
	return snap, err
}

func copyRefs(refs map[int]*snapshot.Node) map[int]*snapshot.Node {
	out := make(map[int]*snapshot.Node, len(refs))
	for k, v := range refs {
		out[k] = v
	}
	return out
}

// Refs returns a copy of the current ref map.
func (s *Session) Refs() map[int]*snapshot.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRefs(s.refs)
}

// resolve finds the element behind ref. Links and buttons that cannot be
// found by role and name are looked up by their text.
func (s *Session) resolve(op string, ref int) (Element, error) {
	node, ok := s.refs[ref]
	if !ok {
		return nil, &Error{Kind: KindInvalidRef, Op: op, Ref: ref, Err: ErrInvalidRef}
	}

	el := s.page.ByRole(node.Role, node.Name)
	n, err := el.Count()
	if err != nil {
		return nil, driverError(op, err)
	}
	if n == 0 && node.Name != "" && (node.Role == "link" || node.Role == "button") {
		s.logger.Debugf("ref [%d] %s %q not found by role, trying text", ref, node.Role, node.Name)
		el = s.page.ByText(node.Name)
		if n, err = el.Count(); err != nil {
			return nil, driverError(op, err)
		}
	}
	if n == 0 {
		return nil, &Error{
			Kind: KindDriver,
			Op:   op,
			Ref:  ref,
			Err:  fmt.Errorf("%w: [%d] %s %q, take a new snapshot", ErrElementNotFound, ref, node.Role, node.Name),
		}
	}
	return el, nil
}

// Click clicks the element behind ref. Refs are cleared once the click succeeds.
func (s *Session) Click(ctx context.Context, ref int) (*PageInfo, error) {
	var info *PageInfo
	err := s.run(ctx, "click", func(ctx context.Context) error {
		if err := s.requireActive("click"); err != nil {
			return err
		}
		el, err := s.resolve("click", ref)
		if err != nil {
			return err
		}
		if err := el.Click(); err != nil {
			e := driverError("click", err)
			e.Ref = ref
			return e
		}
		s.clearRefs()
		info = s.pageInfo(0)
		return nil
	}, attribute.Int("browser.ref", ref))
	return info, err
}

// Type fills the element behind ref with text, optionally pressing Enter.
// Refs survive a plain fill and are cleared after a successful Enter.
func (s *Session) Type(ctx context.Context, ref int, text string, pressEnter bool) (*PageInfo, error) {
	var info *PageInfo
	err := s.run(ctx, "type", func(ctx context.Context) error {
		if err := s.requireActive("type"); err != nil {
			return err
		}
		el, err := s.resolve("type", ref)
		if err != nil {
			return err
		}
		if err := el.Fill(text); err != nil {
			e := driverError("type", err)
			e.Ref = ref
			return e
		}
		if pressEnter {
			if err := el.Press("Enter"); err != nil {
				e := driverError("type", err)
				e.Ref = ref
				return e
			}
			s.clearRefs()
		}
		info = s.pageInfo(0)
		return nil
	}, attribute.Int("browser.ref", ref), attribute.Bool("browser.press_enter", pressEnter))
	return info, err
}

// Select chooses value in the select element behind ref.
func (s *Session) Select(ctx context.Context, ref int, value string) (*PageInfo, error) {
	var info *PageInfo
	err := s.run(ctx, "select", func(ctx context.Context) error {
		if err := s.requireActive("select"); err != nil {
			return err
		}
		el, err := s.resolve("select", ref)
		if err != nil {
			return err
		}
		if err := el.SelectOption(value); err != nil {
			e := driverError("select", err)
			e.Ref = ref
			return e
		}
		info = s.pageInfo(0)
		return nil
	}, attribute.Int("browser.ref", ref))
	return info, err
}

// Scroll moves the viewport up or down by a full or ("half") half viewport
// height and returns the pixel delta applied.
func (s *Session) Scroll(ctx context.Context, direction, amount string) (int, error) {
	var delta int
	err := s.run(ctx, "scroll", func(ctx context.Context) error {
		if err := s.requireActive("scroll"); err != nil {
			return err
		}

		d, err := scrollDelta(s.cfg.ViewportHeight, direction, amount)
		if err != nil {
			return invalidArgument("scroll", "%v", err)
		}
		if err := s.page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", d)); err != nil {
			return driverError("scroll", err)
		}
		delta = d
		return nil
	}, attribute.String("browser.direction", direction))
	return delta, err
}

func scrollDelta(viewportHeight int, direction, amount string) (int, error) {
	delta := viewportHeight
	if amount == "half" {
		delta = viewportHeight / 2
	}
	switch direction {
	case "down":
		return delta, nil
	case "up":
		return -delta, nil
	}
	return 0, fmt.Errorf("direction must be \"up\" or \"down\", got %q", direction)
}

// Screenshot saves a PNG under the screenshots directory and returns its
// workspace-relative path.
func (s *Session) Screenshot(ctx context.Context, fullPage bool) (string, error) {
	var rel string
	err := s.run(ctx, "screenshot", func(ctx context.Context) error {
		if err := s.requireActive("screenshot"); err != nil {
			return err
		}

		path, err := s.artifactPath(s.cfg.ScreenshotsDir, "screenshot", ".png")
		if err != nil {
			return invalidArgument("screenshot", "%v", err)
		}
		if err := s.page.Screenshot(path, fullPage); err != nil {
			return driverError("screenshot", err)
		}
		if rel, err = s.guard.Rel(path); err != nil {
			return invalidArgument("screenshot", "%v", err)
		}
		s.logger.Infof("screenshot saved to %s", rel)
		return nil
	}, attribute.Bool("browser.full_page", fullPage))
	return rel, err
}

// artifactPath returns an unused <dir>/<prefix>_<YYYYMMDD_HHMMSS><ext>
// inside the workspace, adding _2, _3 ... on collision.
func (s *Session) artifactPath(dir, prefix, ext string) (string, error) {
	absDir, err := s.guard.EnsureDir(dir)
	if err != nil {
		return "", err
	}

	base := fmt.Sprintf("%s_%s", prefix, s.now().Format("20060102_150405"))
	path := filepath.Join(absDir, base+ext)
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(absDir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Tabs lists the open tabs.
func (s *Session) Tabs(ctx context.Context) ([]TabInfo, error) {
	var tabs []TabInfo
	err := s.run(ctx, "tabs", func(ctx context.Context) error {
		if err := s.requireActive("tabs"); err != nil {
			return err
		}
		for i, p := range s.inst.Pages() {
			title, _ := p.Title()
			tabs = append(tabs, TabInfo{Index: i, URL: p.URL(), Title: title, Active: p == s.page})
		}
		return nil
	})
	return tabs, err
}

// SwitchTab activates the tab at index, moves the navigation observer to it
// and clears the ref map.
func (s *Session) SwitchTab(ctx context.Context, index int) (*TabInfo, error) {
	var tab *TabInfo
	err := s.run(ctx, "switch_tab", func(ctx context.Context) error {
		if err := s.requireActive("switch_tab"); err != nil {
			return err
		}

		pages := s.inst.Pages()
		if index < 0 || index >= len(pages) {
			return invalidArgument("switch_tab", "tab index %d out of range (%d open)", index, len(pages))
		}

		page := pages[index]
		if err := page.BringToFront(); err != nil {
			return driverError("switch_tab", err)
		}

		s.bind(page)
		s.clearRefs()
		title, _ := page.Title()
		tab = &TabInfo{Index: index, URL: page.URL(), Title: title, Active: true}
		return nil
	}, attribute.Int("browser.tab", index))
	return tab, err
}

// PageText returns the cleaned markup of the current page, cut to maxLength
// characters (DefaultPageTextLength when maxLength <= 0).
func (s *Session) PageText(ctx context.Context, maxLength int) (*PageText, error) {
	var text *PageText
	err := s.run(ctx, "page_text", func(ctx context.Context) error {
		if err := s.requireActive("page_text"); err != nil {
			return err
		}

		raw, err := s.page.Content()
		if err != nil {
			return driverError("page_text", err)
		}
		cleaned, err := cleanPage(raw, maxLength)
		if err != nil {
			return driverError("page_text", err)
		}

		text = &PageText{
			URL:         s.page.URL(),
			Title:       cleaned.Title,
			Description: cleaned.Description,
			HTML:        cleaned.HTML,
			Truncated:   cleaned.Truncated,
		}
		return nil
	})
	return text, err
}

// SavePDF prints the current page to the downloads directory and reports
// the number of pages written.
func (s *Session) SavePDF(ctx context.Context) (*PDFInfo, error) {
	var info *PDFInfo
	err := s.run(ctx, "save_pdf", func(ctx context.Context) error {
		if err := s.requireActive("save_pdf"); err != nil {
			return err
		}

		path, err := s.artifactPath(s.cfg.DownloadsDir, "page", ".pdf")
		if err != nil {
			return invalidArgument("save_pdf", "%v", err)
		}
		if err := s.page.PDF(path); err != nil {
			return driverError("save_pdf", err)
		}

		pages, err := api.PageCountFile(path)
		if err != nil {
			s.logger.Warnf("failed to count pages of %s: %v", path, err)
		}
		rel, err := s.guard.Rel(path)
		if err != nil {
			return invalidArgument("save_pdf", "%v", err)
		}
		info = &PDFInfo{Path: rel, Pages: pages}
		return nil
	})
	return info, err
}

// Close saves cookies when persistence is on, then releases the browser.
// Closing a session that is not active is a no-op.
func (s *Session) Close(ctx context.Context) error {
	return s.run(ctx, "close", func(ctx context.Context) error {
		if s.state != StateActive {
			return nil
		}

		var errs []error
		if s.cookies != nil {
			if err := s.saveCookies(); err != nil {
				s.logger.Warnf("%v", err)
				errs = append(errs, err)
			}
		}

		if s.unobserve != nil {
			s.unobserve()
			s.unobserve = nil
		}
		if err := s.inst.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}

		s.inst = nil
		s.page = nil
		s.state = StateClosed
		s.clearRefs()
		s.metrics.sessionClosed()
		s.logger.Infof("browser closed (session %s)", s.id)

		if err := errors.Join(errs...); err != nil {
			return driverError("close", err)
		}
		return nil
	})
}

func (s *Session) saveCookies() error {
	state, err := s.inst.StorageState()
	if err != nil {
		return fmt.Errorf("failed to read storage state: %w", err)
	}
	if err := s.cookies.Save(state); err != nil {
		return err
	}
	s.logger.Debugf("storage state saved to %s", s.cookies.Path())
	return nil
}
