package caption

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// PunctuationMode selects how caption lines render punctuation.
type PunctuationMode string

// Punctuation display modes.
const (
	PunctuationKeep  PunctuationMode = "keep"
	PunctuationHalf  PunctuationMode = "half"
	PunctuationFull  PunctuationMode = "full"
	PunctuationStrip PunctuationMode = "strip"
)

// PunctuationTable maps full-width punctuation to half-width punctuation and
// back. The per-rune table is a bijection, so converting a text made only of
// table runes to half width and back restores it.
type PunctuationTable struct {
	toHalf  map[rune]rune
	toFull  map[rune]rune
	runs    []runSubstitution
	members map[rune]struct{}
}

type runSubstitution struct {
	from, to string
}

var fullHalfPairs = [][2]rune{
	{'，', ','},
	{'。', '.'},
	{'！', '!'},
	{'？', '?'},
	{'；', ';'},
	{'：', ':'},
	{'（', '('},
	{'）', ')'},
	{'【', '['},
	{'】', ']'},
	{'《', '<'},
	{'》', '>'},
	{'“', '"'},
	{'‘', '\''},
	{'～', '~'},
}

// Punctuation that has no counterpart in the table but is still removed by
// Strip.
var extraPunctuation = []rune{'”', '’', '、', '…', '—', '·', '「', '」', '『', '』', '〈', '〉'}

// NewPunctuationTable builds the default table.
func NewPunctuationTable() *PunctuationTable {
	t := &PunctuationTable{
		toHalf:  make(map[rune]rune, len(fullHalfPairs)),
		toFull:  make(map[rune]rune, len(fullHalfPairs)),
		members: make(map[rune]struct{}, 2*len(fullHalfPairs)+len(extraPunctuation)),
		runs: []runSubstitution{
			{from: "……", to: "..."},
			{from: "——", to: "--"},
		},
	}
	for _, p := range fullHalfPairs {
		t.toHalf[p[0]] = p[1]
		t.toFull[p[1]] = p[0]
		t.members[p[0]] = struct{}{}
		t.members[p[1]] = struct{}{}
	}
	for _, r := range extraPunctuation {
		t.members[r] = struct{}{}
	}
	return t
}

// IsPunctuation reports whether r belongs to the table's punctuation set.
func (t *PunctuationTable) IsPunctuation(r rune) bool {
	_, ok := t.members[r]
	return ok
}

// ToHalfWidth replaces full-width punctuation with half-width punctuation.
// Ellipsis and em-dash runs are rewritten before the per-rune table. Full-width
// punctuation outside the table is narrowed with its Unicode counterpart.
func (t *PunctuationTable) ToHalfWidth(text string) string {
	for _, s := range t.runs {
		text = strings.ReplaceAll(text, s.from, s.to)
	}
	return strings.Map(func(r rune) rune {
		if h, ok := t.toHalf[r]; ok {
			return h
		}
		if p := width.LookupRune(r); p.Kind() == width.EastAsianFullwidth && isSymbolic(r) {
			if n := p.Narrow(); n != 0 {
				return n
			}
		}
		return r
	}, text)
}

// ToFullWidth replaces half-width punctuation with full-width punctuation.
// Only table runes are converted; hyphens, slashes and the like stay ASCII.
func (t *PunctuationTable) ToFullWidth(text string) string {
	return strings.Map(func(r rune) rune {
		if f, ok := t.toFull[r]; ok {
			return f
		}
		return r
	}, text)
}

// Strip removes punctuation line by line. Punctuation at the end of a line is
// dropped; punctuation inside a line becomes a single space unless it already
// borders whitespace. Existing whitespace and line breaks are kept.
func (t *PunctuationTable) Strip(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = t.stripLine(line)
	}
	return strings.Join(lines, "\n")
}

func (t *PunctuationTable) stripLine(line string) string {
	line = strings.TrimRightFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || t.IsPunctuation(r)
	})

	var b strings.Builder
	b.Grow(len(line))
	pending := false
	// line start counts as a boundary so leading punctuation is dropped
	afterSpace := true
	for _, r := range line {
		if t.IsPunctuation(r) {
			pending = true
			continue
		}
		space := unicode.IsSpace(r)
		if pending && !afterSpace && !space {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
		afterSpace = space
	}
	return b.String()
}

// Apply renders text according to mode. Unknown modes keep the text.
func (t *PunctuationTable) Apply(mode PunctuationMode, text string) string {
	switch mode {
	case PunctuationHalf:
		return t.ToHalfWidth(text)
	case PunctuationFull:
		return t.ToFullWidth(text)
	case PunctuationStrip:
		return t.Strip(text)
	default:
		return text
	}
}

func isSymbolic(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
