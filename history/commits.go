package history

import (
	"strings"

	"github.com/quesurifn/git-calendar-server/types"
)

// Commit is one commit with the diff against its first parent.
type Commit struct {
	Message string
	Author  string
	Time    int64
	Parent  int64
	Files   int64
	Added   int64
	Removed int64
}

func (c Commit) samples() []Sample {
	return []Sample{
		{Attribute: FilesChanged, Value: c.Files},
		{Attribute: LinesAdded, Value: c.Added},
		{Attribute: LinesRemoved, Value: c.Removed},
	}
}

type annotated struct {
	value   types.CalendarValue
	samples []Sample
}

// Calculate turns commits, newest first, into calendar values. A commit
// whose gap to its parent reaches timeAllowed ends a working session; the
// last commit of every session gets a projected duration instead of the
// raw gap.
func Calculate(commits []Commit, timeAllowed int64) []types.CalendarValue {
	predictor := NewPredictor()
	items := make([]annotated, 0, len(commits))

	for _, c := range commits {
		delta := c.Time - c.Parent
		item := annotated{
			value: types.CalendarValue{
				Title:  strings.TrimSpace(c.Message),
				DeltaT: delta,
				Start:  c.Parent,
				End:    c.Time,
				Author: c.Author,
			},
			samples: c.samples(),
		}
		items = append(items, item)

		if delta < timeAllowed {
			for _, s := range item.samples {
				predictor.Insert(s.Attribute, s.Value, delta)
			}
		}
	}

	out := make([]types.CalendarValue, 0, len(items))
	for _, group := range splitSessions(items, timeAllowed) {
		last := &group[len(group)-1]
		prediction := predictor.Predict(last.samples)
		last.value.DeltaT = prediction
		last.value.Start = last.value.End - prediction
		last.value.Projected = true

		for _, item := range group {
			out = append(out, item.value)
		}
	}
	return out
}

// splitSessions splits after every item whose gap reaches timeAllowed. The
// trailing group may end without such an item.
func splitSessions(items []annotated, timeAllowed int64) [][]annotated {
	var groups [][]annotated
	start := 0
	for i, item := range items {
		if timeAllowed <= item.value.DeltaT {
			groups = append(groups, items[start:i+1])
			start = i + 1
		}
	}
	if start < len(items) {
		groups = append(groups, items[start:])
	}
	return groups
}
