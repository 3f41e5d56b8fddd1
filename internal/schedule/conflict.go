package schedule

import "github.com/chengus/nyu-course-scraper/internal/model"

// DetectConflicts returns a copy of events with HasConflict set on every
// event whose interval strictly overlaps another event's. Two intervals
// overlap iff each starts before the other ends; touching endpoints (one
// ends exactly when the other starts) do not count.
//
// The input is left untouched so the detector composes as a pure step of the
// derivation pipeline. Quadratic pairwise comparison is fine at this scale
// (a student schedule is tens of events).
func DetectConflicts(events []model.CalendarEvent) []model.CalendarEvent {
	out := make([]model.CalendarEvent, len(events))
	copy(out, events)
	for i := range out {
		out[i].HasConflict = false
	}

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[i].Start.Before(out[j].End) && out[i].End.After(out[j].Start) {
				out[i].HasConflict = true
				out[j].HasConflict = true
			}
		}
	}
	return out
}
