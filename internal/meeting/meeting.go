// Package meeting parses the bulletin's compact meeting-pattern strings,
// e.g. "TR 12:30-1:45p, M 9:30-10:45a", into day sets and clock time ranges.
//
// Parsing is best effort throughout: a piece that does not match the grammar
// is skipped with a reason, never an error. A single malformed piece must not
// keep the rest of a pattern (or other courses) from producing events.
package meeting

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	applog "github.com/chengus/nyu-course-scraper/internal/log"
)

// Segment is one day-group plus one resolved time range in 24-hour civil
// time, e.g. days={Tue,Thu} 12:30-13:45.
type Segment struct {
	Days []time.Weekday

	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// Piece is the tagged result for one comma-separated piece of a pattern:
// either a Segment or a skip reason.
type Piece struct {
	Text    string
	Segment *Segment
	Skipped string
}

var (
	// Leading run of day letters, one space, then the time-range text.
	pieceRe = regexp.MustCompile(`^([MTWRFSU]+) (.+)$`)

	// H[:MM][ap]-H:MM[ap]; minutes are mandatory on the end side only.
	// The bulletin emits both short ("1:45p") and long ("1:45pm") markers.
	timeRe = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?([ap]m?)?-(\d{1,2}):(\d{2})([ap]m?)?$`)
)

// dayOfLetter maps pattern letters to weekdays. S and U both appear in real
// patterns: S is Saturday, U is Sunday.
var dayOfLetter = map[byte]time.Weekday{
	'M': time.Monday,
	'T': time.Tuesday,
	'W': time.Wednesday,
	'R': time.Thursday,
	'F': time.Friday,
	'S': time.Saturday,
	'U': time.Sunday,
}

// Parse splits pattern on commas and resolves each piece. The returned slice
// has one entry per non-empty piece, in input order.
func Parse(pattern string) []Piece {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	var pieces []Piece
	for _, raw := range strings.Split(pattern, ",") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		pieces = append(pieces, parsePiece(text))
	}
	return pieces
}

// Segments returns only the successfully parsed segments of pattern.
func Segments(pattern string) []Segment {
	var segs []Segment
	for _, p := range Parse(pattern) {
		if p.Segment != nil {
			segs = append(segs, *p.Segment)
		}
	}
	return segs
}

func parsePiece(text string) Piece {
	m := pieceRe.FindStringSubmatch(text)
	if m == nil {
		return Piece{Text: text, Skipped: "no day-letter prefix"}
	}

	days := make([]time.Weekday, 0, len(m[1]))
	for i := 0; i < len(m[1]); i++ {
		days = append(days, dayOfLetter[m[1][i]])
	}

	seg, reason := resolveTimeRange(m[2])
	if seg == nil {
		return Piece{Text: text, Skipped: reason}
	}

	seg.Days = days
	return Piece{Text: text, Segment: seg}
}

// resolveTimeRange parses a time-range text like "12:30-1:45p" or "8-9:15a"
// into 24-hour clock values. Rules, in order:
//
//  1. Start minutes default to :00 when omitted.
//  2. A start side without a meridiem marker inherits the end side's marker.
//     This means "11-12:15p" resolves to 23:00-12:15; the inheritance rule is
//     applied literally, not second-guessed.
//  3. 'p' adds 12 unless the hour already is 12; 'a' turns 12 into 0.
func resolveTimeRange(text string) (*Segment, string) {
	m := timeRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return nil, "time range does not match H[:MM][ap]-H:MM[ap]"
	}

	startHour, _ := strconv.Atoi(m[1])
	startMin := 0
	if m[2] != "" {
		startMin, _ = strconv.Atoi(m[2])
	}
	endHour, _ := strconv.Atoi(m[4])
	endMin, _ := strconv.Atoi(m[5])

	startMer := m[3]
	endMer := m[6]
	if startMer == "" {
		startMer = endMer
	}

	startHour = to24Hour(startHour, startMer)
	endHour = to24Hour(endHour, endMer)

	if startHour > 23 || endHour > 23 || startMin > 59 || endMin > 59 {
		return nil, "clock value out of range"
	}

	if startHour*60+startMin >= endHour*60+endMin {
		// Legal per the documented rules (meridiem inheritance can push a
		// start past its end); flagged for manual review of the source data.
		applog.Debug("meeting: resolved start not before end", "range", text,
			"start_hour", startHour, "end_hour", endHour)
	}

	return &Segment{
		StartHour:   startHour,
		StartMinute: startMin,
		EndHour:     endHour,
		EndMinute:   endMin,
	}, ""
}

func to24Hour(hour int, meridiem string) int {
	switch {
	case strings.HasPrefix(meridiem, "p"):
		if hour != 12 {
			hour += 12
		}
	case strings.HasPrefix(meridiem, "a"):
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}
