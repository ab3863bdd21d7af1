package widget

import (
	"fmt"
	"strconv"
	"time"

	"github.com/quesurifn/git-calendar-server/calendar"
	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/types"
)

const (
	gridWeeks = 6
	dayLayout = "2006-01-02"
)

// MonthView draws a six week month grid into Mount.
type MonthView struct {
	Mount *page.Element

	// Focus overrides the month chosen from the render options.
	Focus *time.Time
	// NavURL, when set, links the toolbar to the neighbouring months.
	NavURL func(month time.Time) string

	WeekStart time.Weekday
	Location  *time.Location
	Now       func() time.Time
}

func (m *MonthView) now() time.Time {
	if m.Now == nil {
		return time.Now().In(m.location())
	}
	return m.Now().In(m.location())
}

func (m *MonthView) location() *time.Location {
	if m.Location == nil {
		return time.Local
	}
	return m.Location
}

// Render replaces the mount's content with the month containing the focus
// date.
func (m *MonthView) Render(opts calendar.Options) error {
	if m.Mount == nil {
		return fmt.Errorf("month view: no mount element")
	}
	if opts.InitialView != calendar.ViewMonth {
		return fmt.Errorf("month view: unsupported view %q", opts.InitialView)
	}

	focus := m.focus(opts.InitialDate)
	first := time.Date(focus.Year(), focus.Month(), 1, 0, 0, 0, 0, m.location())
	offset := (int(first.Weekday()) - int(m.WeekStart) + 7) % 7
	gridStart := first.AddDate(0, 0, -offset)
	gridEnd := gridStart.AddDate(0, 0, gridWeeks*7)

	byDay, invalid := bucket(opts.Events, gridStart, gridEnd, m.location())

	m.Mount.Clear()
	m.Mount.SetAttr("data-view", string(calendar.ViewMonth))
	m.Mount.SetAttr("data-month", first.Format("2006-01"))
	m.Mount.SetAttr("data-event-count", strconv.Itoa(len(opts.Events)))
	m.Mount.SetAttr("data-invalid-events", strconv.Itoa(invalid))
	if opts.InitialDate != nil && opts.InitialDate.Valid {
		m.Mount.SetAttr("data-initial-date", opts.InitialDate.Format(time.RFC3339))
	}

	m.Mount.Append(m.toolbar(first))

	table := page.NewElement("table", "class", "calendar-grid")
	head := page.NewElement("tr")
	for i := 0; i < 7; i++ {
		day := time.Weekday((int(m.WeekStart) + i) % 7)
		head.Append(page.Text("th", day.String()[:3]))
	}
	thead := page.NewElement("thead")
	thead.Append(head)
	table.Append(thead)

	body := page.NewElement("tbody")
	today := m.now().Format(dayLayout)
	day := gridStart
	for w := 0; w < gridWeeks; w++ {
		row := page.NewElement("tr")
		for d := 0; d < 7; d++ {
			row.Append(m.cell(day, first.Month(), today, byDay[day.Format(dayLayout)], opts))
			day = day.AddDate(0, 0, 1)
		}
		body.Append(row)
	}
	table.Append(body)
	m.Mount.Append(table)

	m.Mount.SetAttr("data-ready", "true")
	return nil
}

func (m *MonthView) focus(initial *types.Date) time.Time {
	switch {
	case m.Focus != nil:
		return m.Focus.In(m.location())
	case initial != nil && initial.Valid:
		return initial.In(m.location())
	default:
		return m.now()
	}
}

func (m *MonthView) toolbar(first time.Time) *page.Element {
	bar := page.NewElement("div", "class", "calendar-toolbar")
	if m.NavURL != nil {
		bar.Append(page.Text("a", "‹", "class", "prev", "href", m.NavURL(first.AddDate(0, -1, 0))))
	}
	bar.Append(page.Text("h2", first.Format("January 2006")))
	if m.NavURL != nil {
		bar.Append(
			page.Text("a", "›", "class", "next", "href", m.NavURL(first.AddDate(0, 1, 0))),
			page.Text("a", "Today", "class", "today", "href", m.NavURL(m.now())),
		)
	}
	return bar
}

func (m *MonthView) cell(day time.Time, month time.Month, today string, idx []int, opts calendar.Options) *page.Element {
	key := day.Format(dayLayout)
	td := page.NewElement("td", "class", "day", "data-date", key)
	if day.Month() != month {
		td.AddClass("other-month")
	}
	if key == today {
		td.AddClass("today")
	}
	td.Append(page.Text("div", strconv.Itoa(day.Day()), "class", "day-number"))

	if len(idx) == 0 {
		return td
	}
	list := page.NewElement("ul", "class", "events")
	for _, i := range idx {
		list.Append(item(opts.Events[i], opts.Templates))
	}
	td.Append(list)
	return td
}

func item(ev types.DisplayEvent, tpl calendar.Templates) *page.Element {
	li := page.NewElement("li", "title", ev.Title)
	if ev.Category != "" {
		li.AddClass(ev.Category)
	}
	if projected, ok := ev.Extra["projected"]; ok && string(projected) == "true" {
		li.AddClass("projected")
	}

	var content *page.Element
	switch {
	case ev.AllDay && tpl.AllDay != nil:
		content = tpl.AllDay(ev)
	case !ev.AllDay && tpl.Time != nil:
		content = tpl.Time(ev)
	}
	if content == nil {
		content = page.Text("span", ev.Title)
	}
	li.Append(content)
	return li
}

// bucket lists, per day key, the indexes of the events overlapping that day
// within [from, to). It also counts events with an invalid start.
func bucket(events []types.DisplayEvent, from, to time.Time, loc *time.Location) (map[string][]int, int) {
	out := make(map[string][]int)
	invalid := 0
	for i, ev := range events {
		if !ev.Start.Valid {
			invalid++
			continue
		}
		start := midnight(ev.Start.In(loc))
		end := start
		if ev.End.Valid {
			if e := midnight(ev.End.In(loc)); e.After(start) {
				end = e
			}
		}
		if end.Before(from) || !start.Before(to) {
			continue
		}
		if start.Before(from) {
			start = from
		}
		for d := start; !d.After(end) && d.Before(to); d = d.AddDate(0, 0, 1) {
			key := d.Format(dayLayout)
			out[key] = append(out[key], i)
		}
	}
	return out, invalid
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
