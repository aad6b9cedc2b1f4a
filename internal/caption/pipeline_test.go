package caption

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestPipelineCaptions(t *testing.T) {
	p := &Pipeline{
		Segmenter:   NewSegmenter(RuleSmart),
		MaxChars:    10,
		Punctuation: PunctuationStrip,
		Allocator:   Allocator{GroupSize: 1},
	}

	cues, err := p.Captions("你好。今天天气不错！\n谢谢。", 9*time.Second)
	if err != nil {
		t.Fatalf("Captions failed: %v", err)
	}
	var texts []string
	for _, c := range cues {
		texts = append(texts, c.Text())
	}
	if want := []string{"你好", "今天天气不错", "谢谢"}; !reflect.DeepEqual(texts, want) {
		t.Errorf("cue texts = %q, want %q", texts, want)
	}
	if cues[len(cues)-1].End != 9*time.Second {
		t.Errorf("last cue ends at %v", cues[len(cues)-1].End)
	}
}

func TestPipelineNoLines(t *testing.T) {
	p := &Pipeline{Segmenter: NewSegmenter(RuleSmart), Punctuation: PunctuationStrip}
	if _, err := p.Captions("。！？", time.Second); !errors.Is(err, ErrNoLines) {
		t.Errorf("expected ErrNoLines, got %v", err)
	}
}

func TestParsePunctuationMode(t *testing.T) {
	if m, err := ParsePunctuationMode(""); err != nil || m != PunctuationKeep {
		t.Errorf("empty mode = %q, %v", m, err)
	}
	if _, err := ParsePunctuationMode("bogus"); !errors.Is(err, ErrUnknownPunctuation) {
		t.Errorf("expected ErrUnknownPunctuation, got %v", err)
	}
}
