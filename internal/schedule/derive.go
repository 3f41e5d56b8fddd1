package schedule

import (
	applog "github.com/chengus/nyu-course-scraper/internal/log"
	"github.com/chengus/nyu-course-scraper/internal/meeting"
	"github.com/chengus/nyu-course-scraper/internal/model"
)

// Derive runs the full pipeline over a snapshot of staged courses: parse each
// meeting pattern, expand every segment over the course's date window, then
// mark conflicts across the merged event list.
//
// A course with no meeting pattern or no resolvable date window contributes
// zero events; that is a normal terminal state (independent studies have no
// fixed schedule), not an error. Malformed pattern pieces are skipped
// per piece. Nothing here fails the derivation as a whole.
func Derive(courses []model.StagedCourse, defaultYear int) []model.CalendarEvent {
	events := make([]model.CalendarEvent, 0)

	for _, course := range courses {
		if course.MeetingPattern == "" {
			continue
		}

		startDate, okStart := meeting.ParseDate(course.StartDate, defaultYear)
		endDate, okEnd := meeting.ParseDate(course.EndDate, defaultYear)
		if !okStart || !okEnd {
			applog.Debug("schedule: unresolvable date window, skipping course",
				"course", course.Key, "start", course.StartDate, "end", course.EndDate)
			continue
		}

		for _, piece := range meeting.Parse(course.MeetingPattern) {
			if piece.Segment == nil {
				applog.Debug("schedule: skipped pattern piece",
					"course", course.Key, "piece", piece.Text, "reason", piece.Skipped)
				continue
			}
			events = append(events, expandSegment(course, *piece.Segment, startDate, endDate)...)
		}
	}

	return DetectConflicts(events)
}
