package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/quesurifn/git-calendar-server/calendar"
	"github.com/quesurifn/git-calendar-server/history"
	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/theme"
	"github.com/quesurifn/git-calendar-server/widget"
	"go.uber.org/zap"
)

const monthLayout = "2006-01"

var (
	commitTag = calendar.Tag{CalendarID: "1", Category: "commit"}
	feedTag   = calendar.Tag{CalendarID: "1", Category: "feed"}
)

// calendarPage describes one calendar page: where its data comes from and
// how its heading is filled.
type calendarPage struct {
	heading page.Link
	// headingFromAPI fetches the heading from repo-name and repo-url instead.
	headingFromAPI bool
	dataPath       string
	tag            calendar.Tag
	nav            func(month time.Time) string
}

// IndexHandler renders the configured repository.
func (h *Handlers) IndexHandler(c *fiber.Ctx) error {
	return h.renderCalendar(c, calendarPage{
		headingFromAPI: true,
		dataPath:       "/api/data",
		tag:            commitTag,
		nav:            monthNav("/", nil),
	})
}

// RepoPageHandler renders the repository named by ?url=.
func (h *Handlers) RepoPageHandler(c *fiber.Ctx) error {
	raw, err := h.repoQuery(c)
	if err != nil {
		return err
	}

	q := url.Values{"url": {raw}}
	return h.renderCalendar(c, calendarPage{
		heading:  page.Link{Text: history.RepoName(raw), Href: history.RepoURL(raw)},
		dataPath: "/api/repo?" + q.Encode(),
		tag:      commitTag,
		nav:      monthNav("/repo", q),
	})
}

// FeedPageHandler renders the ICS feed named by ?url=.
func (h *Handlers) FeedPageHandler(c *fiber.Ctx) error {
	raw := c.Query("url")
	if raw == "" {
		return badRequest("Invalid get request parameters!", "missing url")
	}

	q := url.Values{"url": {raw}}
	return h.renderCalendar(c, calendarPage{
		heading:  page.Link{Text: raw, Href: raw},
		dataPath: "/api/ics?" + q.Encode(),
		tag:      feedTag,
		nav:      monthNav("/ics", q),
	})
}

func (h *Handlers) renderCalendar(c *fiber.Ctx, p calendarPage) error {
	view := &widget.MonthView{
		NavURL:    p.nav,
		WeekStart: h.WeekStart,
		Location:  h.location(),
		Now:       h.Now,
	}
	if month := c.Query("month"); month != "" {
		focus, err := time.ParseInLocation(monthLayout, month, h.location())
		if err != nil {
			return badRequest("Invalid month!", err.Error())
		}
		view.Focus = &focus
	}

	doc, err := page.Layout(page.LayoutData{
		AppName: h.AppName,
		Scheme:  h.Scheme,
		Heading: p.heading,
		Path:    c.OriginalURL(),
	})
	if err != nil {
		return err
	}
	h.applyTheme(c, doc)

	view.Mount = doc.ByID("calendar")
	loader := &calendar.Loader{
		Client:    h.Client,
		Widget:    view,
		Status:    statusOf(doc),
		Logger:    h.logger(),
		Location:  h.location(),
		Tag:       p.tag,
		Templates: calendar.CommitTemplates(),
	}

	ctx := c.UserContext()
	base := strings.TrimSuffix(h.BaseURL, "/")
	if title := doc.ByID("title"); p.headingFromAPI && title != nil {
		if err := loader.LoadHeading(ctx, base, title); err != nil {
			h.logger().Warn("LoadHeading", zap.Error(err))
		}
	}
	loader.Load(ctx, base+p.dataPath)

	c.Type("html")
	return doc.Render(c)
}

// statusOf returns the page's status line, or a nil Status when the page
// has none.
func statusOf(doc *page.Document) calendar.Status {
	if el := doc.ByClass("bottom-message"); el != nil {
		return el
	}
	return nil
}

// ReposHandler lists the repositories viewed so far.
func (h *Handlers) ReposHandler(c *fiber.Ctx) error {
	var links []page.Link
	if h.Repos != nil {
		repos, err := h.Repos.List(c.UserContext())
		if err != nil {
			return &AppError{Cause: err.Error(), Message: "Failed to list repos!", Status: fiber.StatusInternalServerError}
		}
		for _, r := range repos {
			links = append(links, page.Link{
				Text: r.Name,
				Href: "/repo?" + url.Values{"url": {r.URL}}.Encode(),
			})
		}
	}

	heading := page.Link{Text: "Repos"}
	if len(links) == 0 {
		heading.Text = "No repos viewed yet"
	}

	doc, err := page.Layout(page.LayoutData{
		AppName: h.AppName,
		Scheme:  h.Scheme,
		Heading: heading,
		Path:    c.OriginalURL(),
		Repos:   links,
	})
	if err != nil {
		return err
	}
	h.applyTheme(c, doc)

	c.Type("html")
	return doc.Render(c)
}

// ToggleThemeHandler flips the session's colour scheme and sends the
// browser back to the page it came from.
func (h *Handlers) ToggleThemeHandler(c *fiber.Ctx) error {
	root := page.NewElement("html", theme.Key, h.defaultScheme())
	switcher := theme.New(h.themeStore(c), root, h.logger())
	switcher.Load()
	scheme := switcher.Toggle()

	h.logger().Debug("ToggleThemeHandler", zap.String("scheme", string(scheme)))
	return c.Redirect(safeReturn(c.FormValue("return")), fiber.StatusSeeOther)
}

func (h *Handlers) applyTheme(c *fiber.Ctx, doc *page.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	theme.New(h.themeStore(c), root, h.logger()).Load()
}

func (h *Handlers) themeStore(c *fiber.Ctx) theme.Store {
	if h.Sessions == nil {
		return nil
	}
	return theme.SessionStore{Sessions: h.Sessions, Ctx: c}
}

func (h *Handlers) defaultScheme() string {
	if s, ok := theme.Parse(h.Scheme); ok {
		return string(s)
	}
	return string(theme.Dark)
}

func monthNav(path string, q url.Values) func(time.Time) string {
	return func(month time.Time) string {
		v := url.Values{}
		for k, vs := range q {
			v[k] = vs
		}
		v.Set("month", month.Format(monthLayout))
		return path + "?" + v.Encode()
	}
}

// safeReturn only allows local paths so the toggle cannot redirect off site.
func safeReturn(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return "/"
	}
	return path
}
