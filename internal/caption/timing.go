package caption

import (
	"strings"
	"time"
	"unicode"
)

// DefaultMinCue is the shortest cue duration the Allocator produces, except
// for a final cue that must end at the audio duration.
const DefaultMinCue = 400 * time.Millisecond

// Cue is one timed caption entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Lines []string
}

// Text returns the cue lines joined by line breaks.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Allocator distributes an audio duration over caption lines in proportion
// to their visible character count.
type Allocator struct {
	// GroupSize is the number of lines per cue. Values below 1 mean 1.
	GroupSize int
	// MinCue is the readability floor for a cue. Zero means DefaultMinCue.
	MinCue time.Duration
}

// Allocate groups lines into cues and times them across duration.
//
// Cues are gapless: each cue starts where the previous one ended, and every
// cue has positive length. A cue shorter than MinCue is stretched, but never
// past the point where each later cue can still get MinCue. When duration
// cannot hold MinCue per cue the floor is dropped and cues are purely
// proportional. The last cue always ends exactly at duration.
// When duration is not positive or there are no lines, Allocate returns nil.
func (a Allocator) Allocate(lines []string, duration time.Duration) []Cue {
	groupSize := max(a.GroupSize, 1)
	floor := a.MinCue
	if floor <= 0 {
		floor = DefaultMinCue
	}

	if duration <= 0 || len(lines) == 0 {
		return nil
	}

	groups := make([][]string, 0, (len(lines)+groupSize-1)/groupSize)
	for start := 0; start < len(lines); start += groupSize {
		end := min(start+groupSize, len(lines))
		g := make([]string, end-start)
		copy(g, lines[start:end])
		groups = append(groups, g)
	}

	weights := make([]int, len(groups))
	total := 0
	for i, g := range groups {
		weights[i] = Weight(g)
		total += weights[i]
	}
	if total == 0 {
		return nil
	}

	if time.Duration(len(groups))*floor > duration {
		floor = 0
	}

	cues := make([]Cue, len(groups))
	running := 0
	var cursor time.Duration
	for i, g := range groups {
		running += weights[i]
		end := scale(duration, running, total)
		if end-cursor < floor {
			end = cursor + floor
		}
		// leave MinCue for each later cue
		if limit := duration - time.Duration(len(groups)-1-i)*floor; end > limit {
			end = limit
		}
		cues[i] = Cue{
			Index: i + 1,
			Start: cursor,
			End:   end,
			Lines: g,
		}
		cursor = end
	}
	cues[len(cues)-1].End = duration

	return cues
}

// Weight counts the non-whitespace runes across lines, floored at 1.
func Weight(lines []string) int {
	n := 0
	for _, l := range lines {
		for _, r := range l {
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return max(n, 1)
}

func scale(d time.Duration, part, total int) time.Duration {
	if part >= total {
		return d
	}
	return time.Duration(float64(d) * float64(part) / float64(total))
}
