package calendar

import (
	"fmt"
	"time"

	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/types"
)

type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// Templates customise how a single event is drawn. Nil fields fall back to
// the widget's own rendering.
type Templates struct {
	Time   func(ev types.DisplayEvent) *page.Element
	AllDay func(ev types.DisplayEvent) *page.Element
}

// Options is what a widget is constructed with.
type Options struct {
	InitialView View
	// InitialDate is nil when there is nothing to anchor the view on.
	InitialDate *types.Date
	Events      []types.DisplayEvent
	Templates   Templates
}

// Widget draws a calendar. Render must replace anything a previous call drew.
type Widget interface {
	Render(opts Options) error
}

// CommitTemplates draws timed events as "start~end title" in white and
// all-day events as a grey title.
func CommitTemplates() Templates {
	return Templates{
		Time: func(ev types.DisplayEvent) *page.Element {
			text := fmt.Sprintf("%s~%s %s", formatTime(ev.Start), formatTime(ev.End), ev.Title)
			return page.Text("span", text, "style", "color: white;")
		},
		AllDay: func(ev types.DisplayEvent) *page.Element {
			return page.Text("span", ev.Title, "style", "color: grey;")
		},
	}
}

func formatTime(d types.Date) string {
	if !d.Valid {
		return d.String()
	}
	return d.Time.Format(time.Kitchen)
}
