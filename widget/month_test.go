package widget

import (
	"testing"
	"time"

	"github.com/quesurifn/git-calendar-server/calendar"
	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)
}

func newView() (*MonthView, *page.Element) {
	mount := page.NewElement("div", "id", "calendar")
	return &MonthView{Mount: mount, Location: time.UTC, Now: fixedNow}, mount
}

func event(title string, start, end time.Time) types.DisplayEvent {
	return types.DisplayEvent{Title: title, Start: types.ValidDate(start), End: types.ValidDate(end)}
}

func cellFor(t *testing.T, mount *page.Element, date string) *page.Element {
	t.Helper()
	cells := mount.Find(func(e *page.Element) bool { return e.Attr("data-date") == date })
	require.Len(t, cells, 1, date)
	return cells[0]
}

func TestRenderUsesInitialDateMonth(t *testing.T) {
	view, mount := newView()
	initial := types.ValidDate(time.Date(2023, time.July, 4, 10, 0, 0, 0, time.UTC))

	require.NoError(t, view.Render(calendar.Options{InitialView: calendar.ViewMonth, InitialDate: &initial}))

	assert.Equal(t, "2023-07", mount.Attr("data-month"))
	assert.Equal(t, "true", mount.Attr("data-ready"))
	assert.Len(t, mount.Find(page.ByTag("td")), 42)
	// July 2023 starts on a Saturday, so a Sunday grid opens on June 25.
	assert.Equal(t, "2023-06-25", mount.Find(page.ByTag("td"))[0].Attr("data-date"))
}

func TestRenderWithoutInitialDateUsesNow(t *testing.T) {
	view, mount := newView()

	require.NoError(t, view.Render(calendar.Options{InitialView: calendar.ViewMonth}))

	assert.Equal(t, "2024-03", mount.Attr("data-month"))
	assert.True(t, cellFor(t, mount, "2024-03-14").HasClass("today"))
	assert.Empty(t, mount.Attr("data-initial-date"))
}

func TestRenderFocusOverridesInitialDate(t *testing.T) {
	view, mount := newView()
	focus := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	view.Focus = &focus
	initial := types.ValidDate(fixedNow())

	require.NoError(t, view.Render(calendar.Options{InitialView: calendar.ViewMonth, InitialDate: &initial}))
	assert.Equal(t, "2022-01", mount.Attr("data-month"))
}

func TestRenderPlacesEvents(t *testing.T) {
	view, mount := newView()
	events := []types.DisplayEvent{
		event("same day", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 11, 0, 0, 0, time.UTC)),
		event("overnight", time.Date(2024, 3, 7, 22, 0, 0, 0, time.UTC), time.Date(2024, 3, 8, 2, 0, 0, 0, time.UTC)),
		{Title: "broken", End: types.ValidDate(fixedNow())},
	}

	require.NoError(t, view.Render(calendar.Options{
		InitialView: calendar.ViewMonth,
		InitialDate: &events[1].End,
		Events:      events,
		Templates:   calendar.CommitTemplates(),
	}))

	assert.Equal(t, "3", mount.Attr("data-event-count"))
	assert.Equal(t, "1", mount.Attr("data-invalid-events"))
	assert.Len(t, cellFor(t, mount, "2024-03-05").Find(page.ByTag("li")), 1)
	assert.Len(t, cellFor(t, mount, "2024-03-07").Find(page.ByTag("li")), 1)
	assert.Len(t, cellFor(t, mount, "2024-03-08").Find(page.ByTag("li")), 1)
	assert.Empty(t, cellFor(t, mount, "2024-03-06").Find(page.ByTag("li")))

	li := cellFor(t, mount, "2024-03-05").Find(page.ByTag("li"))[0]
	assert.Equal(t, "9:00AM~11:00AM same day", li.TextContent())
}

func TestRenderIsIdempotent(t *testing.T) {
	view, mount := newView()
	opts := calendar.Options{
		InitialView: calendar.ViewMonth,
		Events: []types.DisplayEvent{
			event("a", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)),
		},
	}

	require.NoError(t, view.Render(opts))
	require.NoError(t, view.Render(opts))

	assert.Len(t, mount.Find(page.ByTag("table")), 1)
	assert.Len(t, mount.Find(page.ByTag("li")), 1)
}

func TestRenderRejectsOtherViews(t *testing.T) {
	view, _ := newView()
	assert.Error(t, view.Render(calendar.Options{InitialView: calendar.ViewWeek}))

	empty := &MonthView{}
	assert.Error(t, empty.Render(calendar.Options{InitialView: calendar.ViewMonth}))
}

func TestToolbarNavigation(t *testing.T) {
	view, mount := newView()
	view.WeekStart = time.Monday
	view.NavURL = func(month time.Time) string { return "/repo?month=" + month.Format("2006-01") }

	require.NoError(t, view.Render(calendar.Options{InitialView: calendar.ViewMonth}))

	prev := mount.Find(page.ByClass("prev"))
	next := mount.Find(page.ByClass("next"))
	require.Len(t, prev, 1)
	require.Len(t, next, 1)
	assert.Equal(t, "/repo?month=2024-02", prev[0].Attr("href"))
	assert.Equal(t, "/repo?month=2024-04", next[0].Attr("href"))
	assert.Equal(t, "Mon", mount.Find(page.ByTag("th"))[0].TextContent())
}

func TestLoaderDrivesMonthView(t *testing.T) {
	view, mount := newView()
	raw, err := calendar.Parse([]byte(`[{"start":1709629200,"end":1709636400,"title":"a"}]`))
	require.NoError(t, err)
	events := calendar.Transform(raw, time.UTC, calendar.Tag{Category: "commit"})

	require.NoError(t, view.Render(calendar.Options{
		InitialView: calendar.ViewMonth,
		InitialDate: calendar.InitialDate(events),
		Events:      events,
	}))

	assert.Equal(t, "2024-03", mount.Attr("data-month"))
	assert.True(t, cellFor(t, mount, "2024-03-05").Find(page.ByTag("li"))[0].HasClass("commit"))
}
