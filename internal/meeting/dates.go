package meeting

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a course date in any of the three shapes the bulletin
// uses: "YYYY-MM-DD", "M/D/YYYY", or "M/D". The short slash form has no year;
// defaultYear supplies it. The result is a midnight civil date in time.Local.
//
// ok is false for empty or unrecognized input; a course without a resolvable
// date window simply contributes no events.
func ParseDate(s string, defaultYear int) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "-") {
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	parts := strings.Split(s, "/")
	switch len(parts) {
	case 2:
		month, okM := atoiInRange(parts[0], 1, 12)
		day, okD := atoiInRange(parts[1], 1, 31)
		if !okM || !okD {
			return time.Time{}, false
		}
		return time.Date(defaultYear, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	case 3:
		month, okM := atoiInRange(parts[0], 1, 12)
		day, okD := atoiInRange(parts[1], 1, 31)
		year, okY := atoiInRange(parts[2], 1, 9999)
		if !okM || !okD || !okY {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
	}
	return time.Time{}, false
}

func atoiInRange(s string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}
