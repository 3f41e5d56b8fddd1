// Package schedule turns staged courses into concrete calendar events: it
// expands meeting patterns over a course's term window and marks pairwise
// time conflicts. Every derivation runs from scratch over the full staged
// set; there is no incremental state.
package schedule

import (
	"time"

	"github.com/teambition/rrule-go"

	applog "github.com/chengus/nyu-course-scraper/internal/log"
	"github.com/chengus/nyu-course-scraper/internal/meeting"
	"github.com/chengus/nyu-course-scraper/internal/model"
)

var rruleWeekday = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// expandSegment enumerates one event per calendar day in [startDate, endDate]
// (inclusive on both ends) whose weekday is in the segment's day set. Start
// and end instants combine the matched date with the segment's clock times.
func expandSegment(course model.StagedCourse, seg meeting.Segment, startDate, endDate time.Time) []model.CalendarEvent {
	if len(seg.Days) == 0 {
		return nil
	}

	byday := make([]rrule.Weekday, 0, len(seg.Days))
	for _, d := range seg.Days {
		byday = append(byday, rruleWeekday[d])
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq: rrule.WEEKLY,
		Dtstart: time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
			seg.StartHour, seg.StartMinute, 0, 0, time.Local),
		// Until is inclusive; push it to end of day so the end date's own
		// meetings are kept.
		Until:     time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, 0, time.Local),
		Byweekday: byday,
	})
	if err != nil {
		applog.Error("schedule: recurrence rule rejected", err, "course", course.Key)
		return nil
	}

	title := course.Code + " - " + course.Title

	var events []model.CalendarEvent
	for _, start := range r.All() {
		end := time.Date(start.Year(), start.Month(), start.Day(),
			seg.EndHour, seg.EndMinute, 0, 0, time.Local)
		events = append(events, model.CalendarEvent{
			CourseKey: course.Key,
			Title:     title,
			Start:     start,
			End:       end,
			AllDay:    false,
		})
	}
	return events
}
