package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/quesurifn/git-calendar-server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup@example.com\r\n" +
	"DTSTART:20240105T090000Z\r\n" +
	"DTEND:20240105T093000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"LOCATION:Room 1\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday@example.com\r\n" +
	"DTSTART;VALUE=DATE:20240110\r\n" +
	"DTEND;VALUE=DATE:20240111\r\n" +
	"SUMMARY:Holiday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:later@example.com\r\n" +
	"DTSTART:20250105T090000Z\r\n" +
	"DTEND:20250105T093000Z\r\n" +
	"SUMMARY:Out of window\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	events, err := Parse(feed, start, end)
	require.NoError(t, err)
	require.Len(t, events, 2)

	byTitle := map[string]types.FeedEvent{}
	for _, e := range events {
		byTitle[e.Title] = e
	}

	standup := byTitle["Standup"]
	assert.Equal(t, "standup@example.com", standup.UID)
	assert.Equal(t, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC).Unix(), standup.Start)
	assert.Equal(t, int64(1800), standup.End-standup.Start)
	assert.Equal(t, "Room 1", standup.Location)
	assert.False(t, standup.AllDay)

	assert.True(t, byTitle["Holiday"].AllDay)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	client := resty.New()

	body, err := Download(context.Background(), client, srv.URL+"/cal.ics")
	require.NoError(t, err)
	assert.Equal(t, feed, body)

	_, err = Download(context.Background(), client, srv.URL+"/missing.ics")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	values := []types.CalendarValue{
		{Title: "first", Start: 1700000000, End: 1700000600, DeltaT: 600, Author: "ada"},
		{Title: "second", Start: 1700001000, End: 1700001200, DeltaT: 200, Projected: true},
	}

	out := Export("Octo/Repo", values)

	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "SUMMARY:first")
	assert.Contains(t, out, "UID:1700000600-0@octo.repo")
	assert.Contains(t, out, "DTSTART:20231114T221320Z")
	assert.Contains(t, out, "CATEGORIES:projected")
	assert.Equal(t, 2, strings.Count(out, "CATEGORIES:commit"))

	events, err := Parse(out, time.Unix(1690000000, 0), time.Unix(1710000000, 0))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1700000000), events[0].Start)
}
