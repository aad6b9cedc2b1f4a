package caption

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name      string
		sentences []string
		limit     int
		expected  []string
	}{
		{
			name:      "cjk sentences that only fit without separator stay apart",
			sentences: []string{"你好。", "今天天气不错！", "谢谢。"},
			limit:     10,
			expected:  []string{"你好。", "今天天气不错！", "谢谢。"},
		},
		{
			name:      "short cjk sentences merge without space",
			sentences: []string{"你好。", "谢谢。"},
			limit:     10,
			expected:  []string{"你好。谢谢。"},
		},
		{
			name:      "latin fragments merge with space",
			sentences: []string{"Hi there", "how are you?"},
			limit:     28,
			expected:  []string{"Hi there how are you?"},
		},
		{
			name:      "no space after punctuation",
			sentences: []string{"Hi.", "How are you?"},
			limit:     28,
			expected:  []string{"Hi.How are you?"},
		},
		{
			name:      "oversized sentence is chunked",
			sentences: []string{"ab", "abcdefghij", "cd"},
			limit:     4,
			expected:  []string{"ab", "abcd", "efgh", "ij", "cd"},
		},
		{
			name:      "non-positive limit uses default",
			sentences: []string{strings.Repeat("字", 30)},
			limit:     0,
			expected:  []string{strings.Repeat("字", 28), "字字"},
		},
		{
			name:      "blank sentences skipped",
			sentences: []string{" ", "", "x"},
			limit:     5,
			expected:  []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble(tt.sentences, tt.limit)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Assemble = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAssembleNeverExceedsLimit(t *testing.T) {
	sentences := SplitSmart("The quick brown fox jumps over the lazy dog. 我们今天去公园散步，然后回家吃饭。" +
		strings.Repeat("长", 45) + "。Short. Another one here!")

	for _, limit := range []int{1, 3, 7, 10, 28} {
		for _, line := range Assemble(sentences, limit) {
			if n := utf8.RuneCountInString(line); n > limit {
				t.Errorf("limit %d: line %q has %d runes", limit, line, n)
			}
		}
	}
}

func TestJoin(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"abc", "def", "abc def"},
		{"end.", "Next", "end.Next"},
		{"a", ".b", "a.b"},
		{"中文", "abc", "中文abc"},
		{"abc", "中文", "abc中文"},
		{"你好。", "谢谢", "你好。谢谢"},
	}
	for _, tt := range tests {
		if got := join(tt.a, tt.b); got != tt.want {
			t.Errorf("join(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
