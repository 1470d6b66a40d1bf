package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DefaultPageTextLength caps PageText output when no limit is given.
const DefaultPageTextLength = 10000

var (
	droppedElements = setOf("script", "style", "noscript", "iframe", "embed", "object", "svg", "template")

	blockElements = setOf(
		"div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr", "td", "th",
		"form", "fieldset", "blockquote", "pre", "dialog",
	)

	voidElements = setOf(
		"area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta",
		"param", "source", "track", "wbr",
	)

	globalAttrs = setOf("id", "class", "role", "aria-label", "aria-describedby", "name", "title")

	tagAttrs = map[string]map[string]bool{
		"a":        setOf("href", "target"),
		"img":      setOf("src", "alt"),
		"input":    setOf("type", "placeholder", "value"),
		"textarea": setOf("placeholder"),
		"select":   setOf("multiple"),
		"option":   setOf("value", "selected"),
		"button":   setOf("type"),
		"form":     setOf("action", "method"),
		"label":    setOf("for"),
	}
)

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// cleanedPage is the result of cleaning raw page markup.
type cleanedPage struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

// pageCleaner writes a reduced copy of a document: noise elements dropped,
// targeting attributes kept, block elements indented by depth. The length
// budget counts every written byte, markup included. Once it is spent the
// output ends with the truncation marker and no closing tags follow.
type pageCleaner struct {
	out       strings.Builder
	max       int
	truncated bool
}

const truncationMarker = "..."

func cleanPage(raw string, maxLength int) (*cleanedPage, error) {
	if maxLength <= 0 {
		maxLength = DefaultPageTextLength
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &pageCleaner{max: maxLength}
	c.walk(doc, 0)

	return &cleanedPage{
		HTML:        c.out.String(),
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
		Truncated:   c.truncated,
	}, nil
}

// walk returns true once the length budget is exhausted.
func (c *pageCleaner) walk(n *html.Node, depth int) bool {
	if c.truncated {
		return true
	}
	if c.out.Len() >= c.max {
		c.truncate()
		return true
	}

	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return false
	case html.TextNode:
		return c.text(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if droppedElements[tag] {
			return false
		}
		return c.element(n, tag, depth)
	}
	return c.children(n, depth)
}

func (c *pageCleaner) truncate() {
	c.out.WriteString(truncationMarker)
	c.truncated = true
}

func (c *pageCleaner) text(data string) bool {
	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		return false
	}

	if remaining := c.max - c.out.Len(); len(text) > remaining {
		cut := max(remaining, 0)
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		c.out.WriteString(text[:cut])
		c.truncate()
		return true
	}

	c.out.WriteString(text)
	return false
}

func (c *pageCleaner) element(n *html.Node, tag string, depth int) bool {
	block := blockElements[tag]
	if block && depth > 0 {
		c.newline(depth)
	}

	c.out.WriteString("<" + tag)
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if keepAttr(tag, key) {
			fmt.Fprintf(&c.out, ` %s="%s"`, key, html.EscapeString(attr.Val))
		}
	}
	c.out.WriteString(">")

	if c.children(n, depth+1) {
		return true
	}

	if !voidElements[tag] {
		if block {
			c.newline(depth)
		}
		c.out.WriteString("</" + tag + ">")
	}
	return false
}

func (c *pageCleaner) children(n *html.Node, depth int) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if c.walk(child, depth) {
			return true
		}
	}
	return false
}

func (c *pageCleaner) newline(depth int) {
	c.out.WriteString("\n")
	c.out.WriteString(strings.Repeat("  ", depth))
}

func keepAttr(tag, key string) bool {
	if globalAttrs[key] || strings.HasPrefix(key, "data-") || strings.HasPrefix(key, "aria-") {
		return true
	}
	return tagAttrs[tag][key]
}

// findElement returns the first element for which match is true, in document order.
func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findTitle(doc *html.Node) string {
	title := findElement(doc, func(n *html.Node) bool { return n.Data == "title" })
	if title == nil || title.FirstChild == nil || title.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(title.FirstChild.Data)
}

func findMetaDescription(doc *html.Node) string {
	meta := findElement(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attrValue(n, "name") == "description" && attrValue(n, "content") != ""
	})
	if meta == nil {
		return ""
	}
	return strings.TrimSpace(attrValue(meta, "content"))
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
