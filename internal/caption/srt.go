package caption

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// FormatTimestamp renders d as HH:MM:SS,mmm, rounded to the millisecond.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Round(time.Millisecond).Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatSRT serializes cues as SubRip text: index, time range, lines and a
// blank separator line per cue.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	_ = WriteSRT(&b, cues)
	return b.String()
}

// WriteSRT writes cues to w in SubRip format.
func WriteSRT(w io.Writer, cues []Cue) error {
	for _, c := range cues {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			c.Index, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text())
		if err != nil {
			return fmt.Errorf("unable to write cue %d: %w", c.Index, err)
		}
	}
	return nil
}
