// Package store persists the scraped course catalog and the course-details
// cache in a local SQLite database.
package store

import "time"

// Course is one row of the courses table, deduplicated by code.
type Course struct {
	ID            int64
	Code          string
	Subject       string
	CatalogNumber string
	Title         string
}

// Section is one scraped section record, stored as the bulletin returned it.
type Section struct {
	ID         int64
	CourseCode string

	Key          string
	Code         string
	Title        string
	Hide         string
	CRN          string
	No           string
	Total        int
	Schd         string
	Stat         string
	IsCancelled  string
	Meets        string
	MpKey        string
	MeetingTimes string
	Instr        string
	StartDate    string
	EndDate      string
	SrcDB        string

	CampusGroup string
}

// SectionResult is a search hit: a section joined with its course title,
// serialized with the field names the original frontend expects.
type SectionResult struct {
	SectionID   int64  `json:"section_id"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`

	Key          string `json:"key"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Hide         string `json:"hide"`
	CRN          string `json:"crn"`
	No           string `json:"no"`
	Total        int    `json:"total"`
	Schd         string `json:"schd"`
	Stat         string `json:"stat"`
	IsCancelled  string `json:"isCancelled"`
	Meets        string `json:"meets"`
	MpKey        string `json:"mpkey"`
	MeetingTimes string `json:"meetingTimes"`
	Instr        string `json:"instr"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	SrcDB        string `json:"srcdb"`
	CampusGroup  string `json:"campus_group"`
}

// SearchFilter holds the supported search criteria. Code and Title match
// partially; CRN, Schd, and CampusGroup match exactly.
type SearchFilter struct {
	Code        string
	Title       string
	CRN         string
	Schd        string
	CampusGroup string
}

// Empty reports whether no criterion is set. The search endpoint requires at
// least one.
func (f SearchFilter) Empty() bool {
	return f.Code == "" && f.Title == "" && f.CRN == "" && f.Schd == "" && f.CampusGroup == ""
}

// CourseDetails is one cached response from the bulletin details endpoint,
// keyed by (group, key, srcdb).
type CourseDetails struct {
	GroupKey string
	CRNKey   string
	SrcDB    string

	Description              string
	ClassNotes               string
	HoursHTML                string
	Status                   string
	Component                string
	InstructionalMethod      string
	CampusLocation           string
	RegistrationRestrictions string
	MeetingHTML              string
	MeetPattern              string
	MeetStartDate            string
	MeetEndDate              string
	DatesHTML                string
	AllSections              string // JSON array, kept opaque
	DetailsJSON              string // full raw response

	CachedAt time.Time
}

// Stats summarizes catalog contents for the status endpoint.
type Stats struct {
	TotalCourses  int            `json:"total_courses"`
	TotalSections int            `json:"total_sections"`
	CampusGroups  map[string]int `json:"campus_groups"`
}
