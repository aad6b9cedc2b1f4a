package caption

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{1500 * time.Millisecond, "00:00:01,500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03,004"},
		{2769230769 * time.Nanosecond, "00:00:02,769"},
		{999600 * time.Microsecond, "00:00:01,000"},
		{-time.Second, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSRT(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 1200 * time.Millisecond, Lines: []string{"你好。"}},
		{Index: 2, Start: 1200 * time.Millisecond, End: 3 * time.Second, Lines: []string{"line one", "line two"}},
	}

	want := "1\n00:00:00,000 --> 00:00:01,200\n你好。\n\n" +
		"2\n00:00:01,200 --> 00:00:03,000\nline one\nline two\n\n"
	if got := FormatSRT(cues); got != want {
		t.Errorf("FormatSRT =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatSRTEmpty(t *testing.T) {
	if got := FormatSRT(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
