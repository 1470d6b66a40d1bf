package browser

import (
	"errors"
	"os"
)

// fakeDriver is an in-memory Driver. Each Launch starts a fresh instance
// with no pages; the session opens the first one.
type fakeDriver struct {
	launches  int
	launchErr error
	lastOpts  LaunchOptions
	inst      *fakeInstance

	// setup, when set, configures every page the instance opens.
	setup func(*fakePage)
}

func (d *fakeDriver) Launch(opts LaunchOptions) (Instance, error) {
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	d.launches++
	d.lastOpts = opts
	d.inst = &fakeInstance{
		driver: d,
		state:  []byte(`{"cookies":[{"name":"sid","value":"abc","domain":"example.com"}],"origins":[]}`),
	}
	return d.inst, nil
}

type fakeInstance struct {
	driver   *fakeDriver
	pages    []*fakePage
	state    []byte
	stateErr error
	closed   bool
}

func (i *fakeInstance) NewPage() (Page, error) {
	p := newFakePage()
	if i.driver.setup != nil {
		i.driver.setup(p)
	}
	i.pages = append(i.pages, p)
	return p, nil
}

// openTab simulates a tab the page opened by itself (a popup).
func (i *fakeInstance) openTab(url, title string) *fakePage {
	p := newFakePage()
	p.url = url
	p.titles[url] = title
	i.pages = append(i.pages, p)
	return p
}

func (i *fakeInstance) Pages() []Page {
	out := make([]Page, 0, len(i.pages))
	for _, p := range i.pages {
		out = append(out, p)
	}
	return out
}

func (i *fakeInstance) StorageState() ([]byte, error) {
	return i.state, i.stateErr
}

func (i *fakeInstance) Close() error {
	i.closed = true
	return nil
}

type fakeObserver struct {
	fn     func(string)
	active bool
}

type fakePage struct {
	url       string
	titles    map[string]string
	status    int
	redirects map[string]string
	history   []string

	tree    string
	treeErr error
	content string

	elements map[string]*fakeElement

	gotoErr       error
	evalErr       error
	screenshotErr error
	frontErr      error

	evaluated   []string
	screenshots []string
	fronted     int

	observers []*fakeObserver
}

func newFakePage() *fakePage {
	return &fakePage{
		url:       "about:blank",
		titles:    make(map[string]string),
		status:    200,
		redirects: make(map[string]string),
		elements:  make(map[string]*fakeElement),
		tree:      `{"nodes":[]}`,
	}
}

// addElement makes role+name resolvable with a single match.
func (p *fakePage) addElement(role, name string) *fakeElement {
	el := &fakeElement{page: p, count: 1}
	p.elements["role:"+role+":"+name] = el
	return el
}

// addTextElement makes text resolvable through the text fallback.
func (p *fakePage) addTextElement(text string) *fakeElement {
	el := &fakeElement{page: p, count: 1}
	p.elements["text:"+text] = el
	return el
}

func (p *fakePage) fire(url string) {
	for _, o := range p.observers {
		if o.active {
			o.fn(url)
		}
	}
}

func (p *fakePage) activeObservers() int {
	n := 0
	for _, o := range p.observers {
		if o.active {
			n++
		}
	}
	return n
}

func (p *fakePage) Goto(url string) (int, error) {
	if p.gotoErr != nil {
		return 0, p.gotoErr
	}
	final := url
	if r, ok := p.redirects[url]; ok {
		final = r
	}
	p.history = append(p.history, p.url)
	p.url = final
	p.fire(final)
	return p.status, nil
}

func (p *fakePage) GoBack() error {
	if len(p.history) == 0 {
		return errors.New("no history")
	}
	p.url = p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	p.fire(p.url)
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Title() (string, error) { return p.titles[p.url], nil }

func (p *fakePage) AccessibilityTree() ([]byte, error) {
	if p.treeErr != nil {
		return nil, p.treeErr
	}
	return []byte(p.tree), nil
}

func (p *fakePage) lookup(key string) Element {
	if el, ok := p.elements[key]; ok {
		return el
	}
	return &fakeElement{page: p}
}

func (p *fakePage) ByRole(role, name string) Element { return p.lookup("role:" + role + ":" + name) }

func (p *fakePage) ByText(text string) Element { return p.lookup("text:" + text) }

func (p *fakePage) Evaluate(script string) error {
	if p.evalErr != nil {
		return p.evalErr
	}
	p.evaluated = append(p.evaluated, script)
	return nil
}

func (p *fakePage) Screenshot(path string, fullPage bool) error {
	if p.screenshotErr != nil {
		return p.screenshotErr
	}
	p.screenshots = append(p.screenshots, path)
	return os.WriteFile(path, []byte("\x89PNG"), 0600)
}

func (p *fakePage) PDF(path string) error {
	return os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0600)
}

func (p *fakePage) Content() (string, error) { return p.content, nil }

func (p *fakePage) BringToFront() error {
	if p.frontErr != nil {
		return p.frontErr
	}
	p.fronted++
	return nil
}

func (p *fakePage) OnMainFrameNavigated(fn func(url string)) func() {
	o := &fakeObserver{fn: fn, active: true}
	p.observers = append(p.observers, o)
	return func() { o.active = false }
}

type fakeElement struct {
	page     *fakePage
	count    int
	clickErr error
	fillErr  error
	pressErr error

	// navigateTo, when set, is where a click or Enter takes the page.
	navigateTo string

	clicks   int
	filled   []string
	pressed  []string
	selected []string
}

func (e *fakeElement) Count() (int, error) { return e.count, nil }

func (e *fakeElement) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicks++
	if e.navigateTo != "" {
		_, _ = e.page.Goto(e.navigateTo)
	}
	return nil
}

func (e *fakeElement) Fill(text string) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.filled = append(e.filled, text)
	return nil
}

func (e *fakeElement) Press(key string) error {
	if e.pressErr != nil {
		return e.pressErr
	}
	e.pressed = append(e.pressed, key)
	if key == "Enter" && e.navigateTo != "" {
		_, _ = e.page.Goto(e.navigateTo)
	}
	return nil
}

func (e *fakeElement) SelectOption(value string) error {
	e.selected = append(e.selected, value)
	return nil
}

// loginTree is the CDP form of a small login page:
//
//	Login (RootWebArea)
//	  Welcome (heading, level 1)
//	  [1] Sign In (button)
//	  [2] Email (textbox)
//	  [3] Forgot password? (link)
//	  Options (group)
//	    [4] Remember me (checkbox, unchecked)
const loginTree = `{"nodes":[
  {"nodeId":"1","role":{"type":"role","value":"RootWebArea"},"name":{"type":"computedString","value":"Login"},"childIds":["2","3","4","5","6"]},
  {"nodeId":"2","role":{"type":"role","value":"heading"},"name":{"type":"computedString","value":"Welcome"},
   "properties":[{"name":"level","value":{"type":"integer","value":1}}]},
  {"nodeId":"3","role":{"type":"role","value":"button"},"name":{"type":"computedString","value":"Sign In"}},
  {"nodeId":"4","role":{"type":"role","value":"textbox"},"name":{"type":"computedString","value":"Email"}},
  {"nodeId":"5","role":{"type":"role","value":"link"},"name":{"type":"computedString","value":"Forgot password?"}},
  {"nodeId":"6","role":{"type":"role","value":"group"},"name":{"type":"computedString","value":"Options"},"childIds":["7"]},
  {"nodeId":"7","role":{"type":"role","value":"checkbox"},"name":{"type":"computedString","value":"Remember me"},
   "properties":[{"name":"checked","value":{"type":"tristate","value":"false"}}]}
]}`
