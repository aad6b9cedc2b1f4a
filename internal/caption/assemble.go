package caption

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the line length used when a non-positive limit is given.
const DefaultMaxChars = 28

// Assemble packs sentences into display lines of at most limit runes.
//
// Short sentences are merged while the merged line, counted with one
// separator position, still fits. A space is only inserted when both
// boundary characters are ASCII letters or digits, so CJK text is joined
// directly.
// A sentence longer than limit is cut into consecutive limit-sized chunks.
func Assemble(sentences []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxChars
	}

	var (
		lines   []string
		current string
	)
	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}

	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		n := utf8.RuneCountInString(s)
		if n > limit {
			flush()
			lines = append(lines, chunk(s, limit)...)
			continue
		}

		if current == "" {
			current = s
			continue
		}

		if utf8.RuneCountInString(current)+1+n <= limit {
			current = join(current, s)
			continue
		}

		flush()
		current = s
	}
	flush()

	return lines
}

// chunk cuts s into pieces of at most size runes, trimming each piece and
// dropping blank ones.
func chunk(s string, size int) []string {
	runes := []rune(s)
	pieces := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		if p := strings.TrimSpace(string(runes[start:end])); p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

func join(a, b string) string {
	last, _ := utf8.DecodeLastRuneInString(a)
	first, _ := utf8.DecodeRuneInString(b)
	if isASCIIAlnum(last) && isASCIIAlnum(first) {
		return a + " " + b
	}
	return a + b
}

func isASCIIAlnum(r rune) bool {
	return r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}
