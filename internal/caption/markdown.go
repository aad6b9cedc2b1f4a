package caption

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var frontmatterRE = regexp.MustCompile(`(?s)\A---\r?\n.*?\r?\n---\r?\n`)

// RemoveFrontmatter drops a leading YAML frontmatter block.
func RemoveFrontmatter(b []byte) []byte {
	if loc := frontmatterRE.FindIndex(b); loc != nil {
		return b[loc[1]:]
	}
	return b
}

// PlainText flattens markdown into speakable text. Each block ends with a
// line break so the newline and smart rules see block boundaries; code
// blocks, HTML and link targets are left out.
func PlainText(markdown []byte) string {
	source := RemoveFrontmatter(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() {
					buf.WriteByte(' ')
				}
				if node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if !entering {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
