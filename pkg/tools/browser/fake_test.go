package browser

import (
	"os"
	"strings"

	core "github.com/johnsosoka/OpenPaw-sub003/pkg/browser"
)

const searchURL = "https://example.com/search"

// searchTree is a search form:
//
//	Search (RootWebArea)
//	  [1] Query (searchbox)
//	  [2] Go (button)
//	  [3] Sort (combobox)
const searchTree = `{"nodes":[
  {"nodeId":"1","role":{"type":"role","value":"RootWebArea"},"name":{"type":"computedString","value":"Search"},"childIds":["2","3","4"]},
  {"nodeId":"2","role":{"type":"role","value":"searchbox"},"name":{"type":"computedString","value":"Query"}},
  {"nodeId":"3","role":{"type":"role","value":"button"},"name":{"type":"computedString","value":"Go"}},
  {"nodeId":"4","role":{"type":"role","value":"combobox"},"name":{"type":"computedString","value":"Sort"}}
]}`

const searchHTML = `<html><head><title>Search</title>
<meta name="description" content="Find things"></head>
<body><form><input name="q"><button>Go</button></form>
<p>Results are ranked by relevance. Use the sort control to order them by date instead of the default ranking.</p>
<script>track()</script></body></html>`

// stubDriver launches instances whose pages all show the search page.
type stubDriver struct {
	inst *stubInstance
}

func (d *stubDriver) Launch(core.LaunchOptions) (core.Instance, error) {
	d.inst = &stubInstance{}
	return d.inst, nil
}

type stubInstance struct {
	pages []*stubPage
}

func (i *stubInstance) NewPage() (core.Page, error) {
	p := &stubPage{url: "about:blank"}
	i.pages = append(i.pages, p)
	return p, nil
}

func (i *stubInstance) Pages() []core.Page {
	out := make([]core.Page, len(i.pages))
	for n, p := range i.pages {
		out[n] = p
	}
	return out
}

func (i *stubInstance) StorageState() ([]byte, error) {
	return []byte(`{"cookies":[],"origins":[]}`), nil
}

func (i *stubInstance) Close() error { return nil }

type stubPage struct {
	url     string
	history []string
	scripts []string
	filled  map[string]string
	pressed []string
}

func (p *stubPage) Goto(url string) (int, error) {
	p.history = append(p.history, p.url)
	p.url = url
	return 200, nil
}

func (p *stubPage) GoBack() error {
	if n := len(p.history); n > 0 {
		p.url = p.history[n-1]
		p.history = p.history[:n-1]
	}
	return nil
}

func (p *stubPage) URL() string { return p.url }

func (p *stubPage) Title() (string, error) {
	if p.url == searchURL {
		return "Search", nil
	}
	return "", nil
}

func (p *stubPage) AccessibilityTree() ([]byte, error) { return []byte(searchTree), nil }

func (p *stubPage) ByRole(role, name string) core.Element {
	return &stubElement{page: p, key: role + ":" + name}
}

func (p *stubPage) ByText(text string) core.Element {
	return &stubElement{page: p, key: "text:" + text}
}

func (p *stubPage) Evaluate(script string) error {
	p.scripts = append(p.scripts, script)
	return nil
}

func (p *stubPage) Screenshot(path string, fullPage bool) error {
	return os.WriteFile(path, []byte("\x89PNG"), 0600)
}

func (p *stubPage) PDF(path string) error {
	return os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0600)
}

func (p *stubPage) Content() (string, error) { return searchHTML, nil }

func (p *stubPage) BringToFront() error { return nil }

func (p *stubPage) OnMainFrameNavigated(func(string)) func() { return func() {} }

// stubElement matches every role lookup once; text lookups match nothing.
type stubElement struct {
	page *stubPage
	key  string
}

func (e *stubElement) Count() (int, error) {
	if strings.HasPrefix(e.key, "text:") {
		return 0, nil
	}
	return 1, nil
}

func (e *stubElement) Click() error { return nil }

func (e *stubElement) Fill(text string) error {
	if e.page.filled == nil {
		e.page.filled = make(map[string]string)
	}
	e.page.filled[e.key] = text
	return nil
}

func (e *stubElement) Press(key string) error {
	e.page.pressed = append(e.page.pressed, key)
	return nil
}

func (e *stubElement) SelectOption(string) error { return nil }
