package batch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultSlugWidth caps the display width of a line slug.
const DefaultSlugWidth = 40

var (
	invalidFileRunes = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F\x7F]`)
	slugSeparators   = regexp.MustCompile(`[\s_]+`)
)

// Sanitize turns name into a single path element. Illegal characters become
// underscores, whitespace runs collapse into one underscore and leading or
// trailing dots and underscores are dropped. An empty result is "untitled".
func Sanitize(name string) string {
	clean := invalidFileRunes.ReplaceAllString(name, "_")
	clean = slugSeparators.ReplaceAllString(strings.TrimSpace(clean), "_")
	clean = strings.Trim(clean, "._")
	if clean == "" {
		return "untitled"
	}
	return clean
}

// Slug derives a file name stem from a caption line, capped at width display
// columns so wide CJK text is not twice as long as Latin text on screen.
func Slug(line string, width int) string {
	if width <= 0 {
		width = DefaultSlugWidth
	}
	slug := Sanitize(line)
	if runewidth.StringWidth(slug) > width {
		slug = strings.TrimRight(runewidth.Truncate(slug, width, ""), "._")
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// Names is the set of slugs already claimed in one output directory.
type Names map[string]struct{}

// Claim returns slug, or slug with the lowest free "_N" suffix (N >= 2) when
// slug is already in names, and records the result in names.
func Claim(names Names, slug string) string {
	name := slug
	for n := 2; ; n++ {
		if _, taken := names[name]; !taken {
			break
		}
		name = slug + "_" + strconv.Itoa(n)
	}
	names[name] = struct{}{}
	return name
}

// LineFileName builds the name of the artifact for the index-th line (1-based)
// out of total, e.g. "0003_hello.mp3".
func LineFileName(index, total int, name, ext string) string {
	digits := max(len(strconv.Itoa(total)), 4)
	return fmt.Sprintf("%0*d_%s%s", digits, index, name, ext)
}
