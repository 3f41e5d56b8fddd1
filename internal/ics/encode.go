// Package ics serializes derived calendar events into an iCalendar export
// document for download.
package ics

import (
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/chengus/nyu-course-scraper/internal/model"
)

// Filename is the fixed download name for the export document.
const Filename = "schedule.ics"

// ContentType is the MIME type for the export response.
const ContentType = "text/calendar; charset=utf-8"

// ErrNoEvents is returned when there is nothing to export. Encoding an empty
// schedule is a caller precondition failure surfaced to the user, not a
// silent empty document.
var ErrNoEvents = errors.New("no events to export")

const uidDomain = "nyu-course-planner"

// timestampFormat is the compact UTC basic format used for every timestamp
// in the document.
const timestampFormat = "20060102T150405Z"

// Encode renders events as an iCalendar document with one VEVENT per event.
// UIDs are deterministic over (start time, list position), so distinct events
// never collide and re-exports of the same schedule are byte-stable apart
// from DTSTAMP/CREATED.
func Encode(events []model.CalendarEvent) (string, error) {
	return encodeAt(events, time.Now())
}

func encodeAt(events []model.CalendarEvent, now time.Time) (string, error) {
	if len(events) == 0 {
		return "", ErrNoEvents
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for i, ev := range events {
		uid := fmt.Sprintf("%s-%d@%s", ev.Start.UTC().Format(timestampFormat), i, uidDomain)

		ve := cal.AddEvent(uid)
		ve.SetCreatedTime(now)
		ve.SetDtStampTime(now)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(ev.Title)
	}

	return cal.Serialize(), nil
}
