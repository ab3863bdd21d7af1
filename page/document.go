package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"golang.org/x/net/html"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Static returns the embedded stylesheets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Document is a parsed page that can be edited before it is written out.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the <html> element.
func (d *Document) Root() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "html" {
			return &Element{Node: c}
		}
	}
	return nil
}

func (d *Document) ByID(id string) *Element {
	return d.first(ByID(id))
}

// ByClass returns the first element carrying class.
func (d *Document) ByClass(class string) *Element {
	return d.first(ByClass(class))
}

func (d *Document) first(match func(*Element) bool) *Element {
	found := (&Element{Node: d.root}).Find(match)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var b bytes.Buffer
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// Link is a heading or list entry.
type Link struct {
	Text string
	Href string
}

// LayoutData fills the base template.
type LayoutData struct {
	AppName string
	Scheme  string
	Heading Link
	// Path is where the theme toggle returns to.
	Path string
	// Repos, when set, renders a repository list instead of a calendar.
	Repos []Link
}

// Layout renders the base page and parses it into a Document.
func Layout(data LayoutData) (*Document, error) {
	return execute("calendar.html", data)
}

// NotFound returns the page served for unknown routes.
func NotFound(appName, scheme string) (*Document, error) {
	return execute("not_found.html", LayoutData{AppName: appName, Scheme: scheme})
}

func execute(name string, data LayoutData) (*Document, error) {
	if data.Scheme == "" {
		data.Scheme = "dark"
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return Parse(&buf)
}
