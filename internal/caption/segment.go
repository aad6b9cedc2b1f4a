// Package caption turns document text into timed caption cues.
//
// Text flows through a Segmenter (sentences), an Assembler (length-bounded
// display lines) and an Allocator (cues timed against a known audio
// duration). Everything in this package is synchronous and deterministic,
// except the linguistic rule, which delegates to an external Splitter.
package caption

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Rule selects a sentence segmentation strategy.
type Rule string

// Segmentation rules.
const (
	// RuleNewline splits on line breaks only.
	RuleNewline Rule = "newline"
	// RuleSmart splits on line breaks and sentence-ending punctuation.
	RuleSmart Rule = "smart"
	// RuleLinguistic delegates to a Splitter and falls back to RuleSmart.
	RuleLinguistic Rule = "linguistic"
)

// ParseRule validates a rule name.
func ParseRule(s string) (Rule, error) {
	switch r := Rule(strings.ToLower(strings.TrimSpace(s))); r {
	case RuleNewline, RuleSmart, RuleLinguistic:
		return r, nil
	case "":
		return RuleSmart, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRule, s)
	}
}

// sentenceEnders covers full-width and half-width terminators, colons and
// commas.
var sentenceEnders = map[rune]struct{}{
	'。': {}, '！': {}, '？': {}, '；': {}, '：': {}, '，': {}, '、': {}, '…': {},
	'.': {}, '!': {}, '?': {}, ';': {}, ':': {}, ',': {},
}

// Segmenter splits raw text into trimmed sentences.
type Segmenter struct {
	rule     Rule
	splitter Splitter
	logger   *log.Logger
}

// SegmenterOption configures a Segmenter.
type SegmenterOption func(*Segmenter)

// WithSplitter sets the Splitter used by RuleLinguistic.
func WithSplitter(s Splitter) SegmenterOption {
	return func(sg *Segmenter) {
		sg.splitter = s
	}
}

// WithLogger sets the logger used to report linguistic fallbacks.
func WithLogger(l *log.Logger) SegmenterOption {
	return func(sg *Segmenter) {
		if l != nil {
			sg.logger = l
		}
	}
}

// NewSegmenter returns a Segmenter for rule.
func NewSegmenter(rule Rule, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		rule:   rule,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rule returns the segmenter's rule.
func (s *Segmenter) Rule() Rule {
	return s.rule
}

// Segment splits text into sentences according to the configured rule.
func (s *Segmenter) Segment(text string) []string {
	switch s.rule {
	case RuleNewline:
		return SplitNewline(text)
	case RuleLinguistic:
		return s.segmentLinguistic(text)
	default:
		return SplitSmart(text)
	}
}

func (s *Segmenter) segmentLinguistic(text string) []string {
	if s.splitter == nil {
		s.logger.Warn("No linguistic splitter configured, using smart rule")
		return SplitSmart(text)
	}

	parts, err := s.splitter.Split(text)
	if err != nil {
		s.logger.Warn("Linguistic segmentation failed, using smart rule", "error", err)
		return SplitSmart(text)
	}

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// SplitNewline splits text on line breaks, trimming each line and dropping
// blank ones.
func SplitNewline(text string) []string {
	var sentences []string
	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sentences = append(sentences, line)
		}
	}
	return sentences
}

// SplitSmart splits text on line breaks and on sentence-ending punctuation.
// The terminating mark stays with its sentence.
func SplitSmart(text string) []string {
	var (
		sentences []string
		buf       strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			sentences = append(sentences, s)
		}
		buf.Reset()
	}

	for _, r := range normalizeNewlines(text) {
		if r == '\n' {
			flush()
			continue
		}
		buf.WriteRune(r)
		if _, ok := sentenceEnders[r]; ok {
			flush()
		}
	}
	flush()
	return sentences
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
