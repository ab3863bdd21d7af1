package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an element node of a page tree.
type Element struct {
	*html.Node
}

// NewElement creates a detached element. attrs is a list of key, value pairs.
func NewElement(tag string, attrs ...string) *Element {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return &Element{Node: n}
}

// Text creates a detached element holding only text.
func Text(tag, text string, attrs ...string) *Element {
	e := NewElement(tag, attrs...)
	e.SetText(text)
	return e
}

func (e *Element) Attr(key string) string {
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func (e *Element) SetAttr(key, value string) {
	for i, a := range e.Node.Attr {
		if a.Key == key {
			e.Node.Attr[i].Val = value
			return
		}
	}
	e.Node.Attr = append(e.Node.Attr, html.Attribute{Key: key, Val: value})
}

func (e *Element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	classes := strings.TrimSpace(e.Attr("class"))
	if classes != "" {
		classes += " "
	}
	e.SetAttr("class", classes+class)
}

// Clear removes every child.
func (e *Element) Clear() {
	for c := e.FirstChild; c != nil; c = e.FirstChild {
		e.RemoveChild(c)
	}
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) {
	e.Clear()
	if text != "" {
		e.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// Append attaches children in order. Children that already have a parent
// are moved.
func (e *Element) Append(children ...*Element) {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Parent != nil {
			c.Parent.RemoveChild(c.Node)
		}
		e.AppendChild(c.Node)
	}
}

// TextContent concatenates every descendant text node.
func (e *Element) TextContent() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.Node)
	return b.String()
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{Node: c})
		}
	}
	return out
}

// Find returns every descendant element for which match returns true, in
// document order.
func (e *Element) Find(match func(*Element) bool) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			el := &Element{Node: c}
			if match(el) {
				out = append(out, el)
			}
			walk(c)
		}
	}
	walk(e.Node)
	return out
}

func ByTag(tag string) func(*Element) bool {
	return func(e *Element) bool { return e.Data == tag }
}

func ByClass(class string) func(*Element) bool {
	return func(e *Element) bool { return e.HasClass(class) }
}

func ByID(id string) func(*Element) bool {
	return func(e *Element) bool { return e.Attr("id") == id }
}
