package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// CalendarValue is one commit as served by the data endpoints.
type CalendarValue struct {
	Title     string `json:"title"`
	DeltaT    int64  `json:"delta_t"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Projected bool   `json:"projected"`
	Author    string `json:"author"`
}

// FeedEvent is an ICS VEVENT reduced to the wire event shape.
type FeedEvent struct {
	UID      string `json:"uid"`
	Title    string `json:"title"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Location string `json:"location,omitempty"`
	AllDay   bool   `json:"allDay"`
}

type BaseResponse[t any] struct {
	Data    t      `json:"data"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Timestamp is an epoch-seconds value as it arrives on the wire. Valid is
// false when the value was missing or not numeric.
type Timestamp struct {
	Seconds float64
	Valid   bool
}

func Seconds(s float64) Timestamp {
	return Timestamp{Seconds: s, Valid: true}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		*ts = Seconds(f)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return nil
		}
		*ts = Seconds(f)
	}

	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(ts.Seconds, 'f', -1, 64)), nil
}

var errNullEvent = errors.New("event is null")

// RawEvent is one element of a data endpoint response. Fields other than
// start, end and title are kept untouched in Extra.
type RawEvent struct {
	Start Timestamp
	End   Timestamp
	Title string
	Extra map[string]json.RawMessage
}

func (e *RawEvent) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNullEvent
	}

	*e = RawEvent{}
	if raw, ok := fields["start"]; ok {
		_ = e.Start.UnmarshalJSON(raw)
		delete(fields, "start")
	}
	if raw, ok := fields["end"]; ok {
		_ = e.End.UnmarshalJSON(raw)
		delete(fields, "end")
	}
	if raw, ok := fields["title"]; ok {
		if err := json.Unmarshal(raw, &e.Title); err != nil {
			e.Title = string(raw)
		}
		delete(fields, "title")
	}
	if len(fields) > 0 {
		e.Extra = fields
	}

	return nil
}

// Date is a date-time that may be invalid, mirroring what a conversion
// from a malformed timestamp produces.
type Date struct {
	time.Time
	Valid bool
}

func ValidDate(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

func (d Date) String() string {
	if !d.Valid {
		return "Invalid Date"
	}
	return d.Time.Format(time.RFC3339)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return d.Time.MarshalJSON()
}

// DisplayEvent is an event ready to hand to a calendar widget.
type DisplayEvent struct {
	Start      Date                       `json:"start"`
	End        Date                       `json:"end"`
	Title      string                     `json:"title"`
	CalendarID string                     `json:"calendarId,omitempty"`
	Category   string                     `json:"category,omitempty"`
	AllDay     bool                       `json:"allDay,omitempty"`
	Extra      map[string]json.RawMessage `json:"-"`
}
