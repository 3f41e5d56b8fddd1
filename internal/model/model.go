package model

import "time"

// StagedCourse is one course section the user has added to their working
// schedule. The frontend owns persistence (it keeps these in local storage,
// at most one per section key); the backend receives the full set on each
// derivation request.
type StagedCourse struct {
	// Key is the unique section identifier (the bulletin "key" field).
	Key string `json:"key"`

	Code  string `json:"code"`
	Title string `json:"title"`

	// MeetingPattern is the raw pattern string, e.g. "TR 12:30-1:45p".
	// May be empty for courses with no fixed meeting schedule.
	MeetingPattern string `json:"meetingPattern"`

	// StartDate / EndDate bound the term window, in one of three textual
	// forms: "YYYY-MM-DD", "M/D/YYYY", or "M/D" (year defaulted from config).
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	// Detail metadata carried opaquely for display; never interpreted here.
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Location    string `json:"location,omitempty"`
}

// CalendarEvent is a single concrete meeting of a staged course, produced by
// expanding its meeting pattern over the term window. Events are ephemeral:
// the whole set is recomputed whenever the staged-course set changes.
type CalendarEvent struct {
	// CourseKey points back at the owning StagedCourse.Key.
	CourseKey string `json:"courseKey"`

	// Title is "code - display title".
	Title string `json:"title"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// AllDay is always false for course meetings; kept for the calendar
	// widget's event shape.
	AllDay bool `json:"allDay"`

	// HasConflict is set by conflict detection when this event's interval
	// strictly overlaps another event's.
	HasConflict bool `json:"hasConflict"`
}
