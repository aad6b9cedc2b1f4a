package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgnsrekt/voxcue/internal/caption"
	"github.com/muesli/gitcha"
)

var documentExtensions = []string{"*.txt", "*.md", "*.markdown"}

// Document is one input text.
type Document struct {
	// Name is the file name without extension. It names the output directory,
	// with a numeric suffix when another document in the run has the same name.
	Name string
	Path string
	Text string
}

// NewDocument creates a document from text read elsewhere, such as stdin.
func NewDocument(name, text string) Document {
	return Document{Name: name, Text: text}
}

// LoadDocument reads one file. Markdown files are flattened to plain text.
func LoadDocument(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("unable to read document: %w", err)
	}

	ext := filepath.Ext(path)
	text := string(b)
	if isMarkdown(ext) {
		text = caption.PlainText(b)
	}
	return Document{
		Name: strings.TrimSuffix(filepath.Base(path), ext),
		Path: path,
		Text: text,
	}, nil
}

// LoadDocuments reads files and the text and markdown files found in
// directories. Directory searches honor .gitignore unless all is set.
// Documents keep argument order; files found in one directory are sorted
// by path.
func LoadDocuments(paths []string, all bool) ([]Document, error) {
	var docs []Document
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("unable to access %s: %w", p, err)
		}
		if !info.IsDir() {
			doc, err := LoadDocument(p)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
			continue
		}

		found, err := findDocuments(p, all)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			doc, err := LoadDocument(f)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func findDocuments(dir string, all bool) ([]string, error) {
	var (
		ch  chan gitcha.SearchResult
		err error
	)
	if all {
		ch, err = gitcha.FindAllFilesExcept(dir, documentExtensions, nil)
	} else {
		ch, err = gitcha.FindFilesExcept(dir, documentExtensions, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to search %s: %w", dir, err)
	}

	var paths []string
	for res := range ch {
		paths = append(paths, res.Path)
	}
	sort.Strings(paths)
	return paths, nil
}

func isMarkdown(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".markdown", ".mdown", ".mkd", ".mkdn":
		return true
	}
	return false
}
