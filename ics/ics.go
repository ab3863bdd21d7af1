package ics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apognu/gocal"
	ical "github.com/arran4/golang-ical"
	"github.com/go-resty/resty/v2"
	"github.com/quesurifn/git-calendar-server/types"
)

const productID = "-//git-calendar-server//gitcal//EN"

func Download(ctx context.Context, client *resty.Client, url string) (string, error) {
	if client == nil {
		client = resty.New()
	}

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("download %s: %s", url, resp.Status())
	}

	return resp.String(), nil
}

// Parse expands the feed's events that fall between start and end.
func Parse(data string, start, end time.Time) ([]types.FeedEvent, error) {
	parser := gocal.NewParser(strings.NewReader(data))
	parser.Start, parser.End = &start, &end
	if err := parser.Parse(); err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]types.FeedEvent, 0, len(parser.Events))
	for _, e := range parser.Events {
		if e.Start == nil {
			continue
		}
		ev := types.FeedEvent{
			UID:      e.Uid,
			Title:    e.Summary,
			Start:    e.Start.Unix(),
			End:      e.Start.Unix(),
			Location: e.Location,
			AllDay:   allDay(e),
		}
		if e.End != nil {
			ev.End = e.End.Unix()
		}
		events = append(events, ev)
	}

	return events, nil
}

func allDay(e gocal.Event) bool {
	if strings.EqualFold(e.RawStart.Params["VALUE"], "DATE") {
		return true
	}
	if e.RawStart.Value != "" && !strings.Contains(e.RawStart.Value, "T") {
		return true
	}
	return false
}

// Export renders commit events as a PUBLISH calendar.
func Export(name string, values []types.CalendarValue) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for i, v := range values {
		ev := cal.AddEvent(fmt.Sprintf("%d-%d@%s", v.End, i, uidHost(name)))
		ev.SetDtStampTime(time.Unix(v.End, 0).UTC())
		ev.SetStartAt(time.Unix(v.Start, 0).UTC())
		ev.SetEndAt(time.Unix(v.End, 0).UTC())
		ev.SetSummary(v.Title)
		if v.Author != "" {
			ev.SetDescription("Author: " + v.Author)
		}
		ev.AddProperty(ical.ComponentPropertyCategories, "commit")
		if v.Projected {
			ev.AddProperty(ical.ComponentPropertyCategories, "projected")
		}
	}

	return cal.Serialize()
}

func uidHost(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("/", ".", " ", "-").Replace(name)
	if name == "" {
		return "gitcal"
	}
	return name
}
