package caption

import (
	"fmt"
	"strings"
	"time"
)

// Pipeline chains segmentation, line assembly, punctuation rendering and
// timing for one document.
type Pipeline struct {
	Segmenter   *Segmenter
	MaxChars    int
	Punctuation PunctuationMode
	Table       *PunctuationTable
	Allocator   Allocator
}

// ParsePunctuationMode validates a punctuation mode name.
func ParsePunctuationMode(s string) (PunctuationMode, error) {
	switch m := PunctuationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case PunctuationKeep, PunctuationHalf, PunctuationFull, PunctuationStrip:
		return m, nil
	case "":
		return PunctuationKeep, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPunctuation, s)
	}
}

// Lines returns the assembled lines of text, before punctuation rendering.
// Per-line synthesis uses these so speech keeps its original punctuation.
func (p *Pipeline) Lines(text string) []string {
	return Assemble(p.Segmenter.Segment(text), p.MaxChars)
}

// DisplayLines renders lines for captions according to the punctuation
// mode. Lines left empty by stripping are dropped.
func (p *Pipeline) DisplayLines(lines []string) []string {
	if p.Punctuation == "" || p.Punctuation == PunctuationKeep {
		return lines
	}
	table := p.Table
	if table == nil {
		table = NewPunctuationTable()
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(table.Apply(p.Punctuation, l)); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Captions builds cues for text spoken over duration.
func (p *Pipeline) Captions(text string, duration time.Duration) ([]Cue, error) {
	lines := p.DisplayLines(p.Lines(text))
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	return p.Allocator.Allocate(lines, duration), nil
}
