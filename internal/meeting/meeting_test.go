package meeting

import (
	"testing"
	"time"
)

func TestParseSplitsPieces(t *testing.T) {
	pieces := Parse("TR 12:30-1:45p, M 9:30-10:45a")
	if len(pieces) != 2 {
		t.Fatalf("got %d pieces, want 2", len(pieces))
	}
	if pieces[0].Segment == nil || pieces[1].Segment == nil {
		t.Fatalf("expected both pieces to parse: %+v", pieces)
	}

	days := pieces[0].Segment.Days
	if len(days) != 2 || days[0] != time.Tuesday || days[1] != time.Thursday {
		t.Errorf("days = %v, want [Tuesday Thursday]", days)
	}
}

func TestParseSkipsMalformedPieces(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    int // parsed segments
		pieces  int // total pieces
	}{
		{"no day prefix", "12:30-1:45p", 0, 1},
		{"unknown day letter", "X 9:30-10:45a", 0, 1},
		{"end missing minutes", "F 12-1p", 0, 1},
		{"good and bad mixed", "MW 9:30-10:45a, garbage, TR 2-3:15p", 2, 3},
		{"empty", "", 0, 0},
		{"only commas", " , , ", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := Parse(tt.pattern)
			if len(pieces) != tt.pieces {
				t.Fatalf("got %d pieces, want %d", len(pieces), tt.pieces)
			}
			if got := len(Segments(tt.pattern)); got != tt.want {
				t.Errorf("got %d segments, want %d", got, tt.want)
			}
			for _, p := range pieces {
				if p.Segment == nil && p.Skipped == "" {
					t.Errorf("skipped piece %q has no reason", p.Text)
				}
			}
		})
	}
}

func TestResolveTimeRange(t *testing.T) {
	tests := []struct {
		in                     string
		startH, startM, endH, endM int
	}{
		// Meridiem inheritance: bare start inherits the end marker.
		{"12:30-1:45p", 12, 30, 13, 45},
		{"8-9:15a", 8, 0, 9, 15},
		{"9:30-10:45a", 9, 30, 10, 45},
		// Inheriting 'p' onto an 11 o'clock start yields 23:00. Deliberate:
		// the inheritance rule is applied literally.
		{"11-12:15p", 23, 0, 12, 15},
		// 12 is unchanged by 'p', zeroed by 'a'.
		{"12:00-12:50p", 12, 0, 12, 50},
		{"12:00-12:50a", 0, 0, 0, 50},
		// Explicit start marker is not overridden by the end side.
		{"11:00a-12:15p", 11, 0, 12, 15},
		// Long-form markers from the bulletin's meeting_html.
		{"9:30am-10:45am", 9, 30, 10, 45},
		{"2pm-3:15pm", 14, 0, 15, 15},
		// No marker on either side: hours taken as given.
		{"14:00-15:15", 14, 0, 15, 15},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			seg, reason := resolveTimeRange(tt.in)
			if seg == nil {
				t.Fatalf("unexpected skip: %s", reason)
			}
			got := [4]int{seg.StartHour, seg.StartMinute, seg.EndHour, seg.EndMinute}
			want := [4]int{tt.startH, tt.startM, tt.endH, tt.endM}
			if got != want {
				t.Errorf("resolved %v, want %v", got, want)
			}
		})
	}
}

func TestResolveTimeRangeRejects(t *testing.T) {
	for _, in := range []string{"", "9:30", "9:30-", "-10:45", "9:30-10", "abc", "25:00-26:00p"} {
		if seg, _ := resolveTimeRange(in); seg != nil {
			t.Errorf("resolveTimeRange(%q) = %+v, want skip", in, seg)
		}
	}
}

func TestSaturdaySundayLetters(t *testing.T) {
	segs := Segments("SU 10-11:50a")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	days := segs[0].Days
	if len(days) != 2 || days[0] != time.Saturday || days[1] != time.Sunday {
		t.Errorf("days = %v, want [Saturday Sunday]", days)
	}
}
