package calendar

import (
	"encoding/json"
	"math"
	"time"

	"github.com/quesurifn/git-calendar-server/types"
)

// maxEpochMillis bounds the representable range of a date, in milliseconds
// either side of the epoch.
const maxEpochMillis = 8.64e15

// Tag marks every event as belonging to one calendar and category. Empty
// fields are left unset.
type Tag struct {
	CalendarID string
	Category   string
}

// ToDate converts epoch seconds into a date in loc. Non-numeric and
// out-of-range values give an invalid Date.
func ToDate(ts types.Timestamp, loc *time.Location) types.Date {
	if !ts.Valid {
		return types.Date{}
	}
	ms := ts.Seconds * 1000
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return types.Date{}
	}
	if loc == nil {
		loc = time.Local
	}
	return types.ValidDate(time.UnixMilli(int64(ms)).In(loc))
}

// Transform converts wire events into display events in array order.
func Transform(raw []types.RawEvent, loc *time.Location, tag Tag) []types.DisplayEvent {
	events := make([]types.DisplayEvent, 0, len(raw))
	for _, r := range raw {
		ev := types.DisplayEvent{
			Start:      ToDate(r.Start, loc),
			End:        ToDate(r.End, loc),
			Title:      r.Title,
			CalendarID: tag.CalendarID,
			Category:   tag.Category,
			Extra:      r.Extra,
		}
		if v, ok := r.Extra["allDay"]; ok {
			_ = json.Unmarshal(v, &ev.AllDay)
		}
		events = append(events, ev)
	}
	return events
}

// InitialDate returns the end of the last event, or nil when there are no
// events. It is positional, not the latest end.
func InitialDate(events []types.DisplayEvent) *types.Date {
	if len(events) == 0 {
		return nil
	}
	d := events[len(events)-1].End
	return &d
}
