package meeting

import (
	"testing"
	"time"
)

func TestParseDateShapes(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-01-20", time.Date(2026, time.January, 20, 0, 0, 0, 0, time.Local)},
		{"1/20/2026", time.Date(2026, time.January, 20, 0, 0, 0, 0, time.Local)},
		{"1/20", time.Date(2026, time.January, 20, 0, 0, 0, 0, time.Local)},
		{"12/5", time.Date(2026, time.December, 5, 0, 0, 0, 0, time.Local)},
		{" 5/5 ", time.Date(2026, time.May, 5, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in, 2026)
			if !ok {
				t.Fatalf("ParseDate(%q) not ok", tt.in)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{"", "soon", "13/40", "1/2/3/4", "2026-13-40", "a/b"} {
		if _, ok := ParseDate(in, 2026); ok {
			t.Errorf("ParseDate(%q) ok, want rejection", in)
		}
	}
}
