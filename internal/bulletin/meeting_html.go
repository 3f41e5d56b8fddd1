package bulletin

import (
	"regexp"
	"strings"
)

var (
	meetPatternRe = regexp.MustCompile(`<div[^>]*class="meet"[^>]*>([^<]+)`)
	meetDatesRe   = regexp.MustCompile(`\((\d+/\d+)\s+to\s+(\d+/\d+)\)`)
)

// ParseMeetingHTML pulls the meeting pattern and term dates out of the
// details response's meeting_html field, e.g.
//
//	<div class="meet">TR 9:30am-10:45am<span class="meet-dates"> (1/20 to 5/5)</span></div>
//
// returns ("TR 9:30am-10:45am", "1/20", "5/5"). Missing pieces come back
// empty; the dates use the frontend's short M/D form.
func ParseMeetingHTML(meetingHTML string) (pattern, startDate, endDate string) {
	if meetingHTML == "" {
		return "", "", ""
	}

	if m := meetPatternRe.FindStringSubmatch(meetingHTML); m != nil {
		pattern = strings.TrimSpace(m[1])
	}
	if m := meetDatesRe.FindStringSubmatch(meetingHTML); m != nil {
		startDate = m[1]
		endDate = m[2]
	}
	return pattern, startDate, endDate
}
