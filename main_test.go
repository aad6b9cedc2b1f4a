package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/voxcue/internal/batch"
	"github.com/dgnsrekt/voxcue/internal/voices"
	"github.com/spf13/viper"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	content := `documents:
  - intro.md
  - /abs/chapter.txt
voices: [en-US-AriaNeural]
settings:
  output:
    lines: true
  caption:
    punctuation: strip
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := loadManifest(path)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if got, want := m.Documents[0], filepath.Join(dir, "intro.md"); got != want {
		t.Errorf("relative document = %q, want %q", got, want)
	}
	if got := m.Documents[1]; got != "/abs/chapter.txt" {
		t.Errorf("absolute document = %q", got)
	}

	v := viper.New()
	setDefaults(v)
	if err := m.apply(v); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !v.GetBool("output.lines") {
		t.Error("expected output.lines from manifest")
	}
	if !v.GetBool("output.whole") {
		t.Error("expected output.whole to keep its default")
	}
	if got := v.GetString("caption.punctuation"); got != "strip" {
		t.Errorf("caption.punctuation = %q", got)
	}
	if got := v.GetStringSlice("voices"); len(got) != 1 || got[0] != "en-US-AriaNeural" {
		t.Errorf("voices = %v", got)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("voices: [a]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadManifest(empty); err == nil {
		t.Error("expected error for manifest without documents")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("documents: [a.txt]\nvoicez: [b]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadManifest(unknown); err == nil {
		t.Error("expected error for unknown field")
	}

	if _, err := loadManifest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRenderVoice(t *testing.T) {
	v := voices.Voice{ShortName: "en-US-AriaNeural", Locale: "en-US", Gender: "Female", Styles: []string{"chat", "cheerful"}}
	got := renderVoice(v, false)
	for _, want := range []string{"en-US-AriaNeural", "Female", "chat, cheerful"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderVoice() = %q, missing %q", got, want)
		}
	}
	if strings.HasSuffix(renderVoice(voices.Voice{ShortName: "x"}, false), " ") {
		t.Error("renderVoice() leaves trailing spaces")
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	got := renderSummary(&batch.Report{RunID: "run-1"}, false)
	if !strings.Contains(got, "run run-1") {
		t.Errorf("summary misses run id: %q", got)
	}
	if !strings.Contains(got, "0 succeeded, 0 failed, 0 skipped, 0 cached") {
		t.Errorf("summary misses totals: %q", got)
	}
}

func TestWatchedPaths(t *testing.T) {
	docs := []batch.Document{
		{Name: "a", Path: "a.txt"},
		batch.NewDocument("stdin", "hello"),
	}
	got := watchedPaths(docs)
	if len(got) != 1 {
		t.Fatalf("watchedPaths() = %v, want one path", got)
	}
	abs, _ := filepath.Abs("a.txt")
	if _, ok := got[abs]; !ok {
		t.Errorf("watchedPaths() misses %s", abs)
	}
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	if err := os.WriteFile(path, []byte("output:\n  dir: /tmp/custom-out\ncaption:\n  max_chars: 14\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	setDefaults(v)
	if err := readConfigFile(v, path); err != nil {
		t.Fatalf("readConfigFile: %v", err)
	}
	if got := v.GetString("output.dir"); got != "/tmp/custom-out" {
		t.Errorf("output.dir = %q", got)
	}
	if got := v.GetInt("caption.max_chars"); got != 14 {
		t.Errorf("caption.max_chars = %d", got)
	}
	if got := v.ConfigFileUsed(); got != path {
		t.Errorf("ConfigFileUsed() = %q, want %q", got, path)
	}

	if err := readConfigFile(viper.New(), filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

type fakeRefresher struct {
	forced    bool
	refreshed bool
	err       error
}

func (f *fakeRefresher) RefreshCredentials(_ context.Context, force bool) (bool, error) {
	f.forced = force
	return f.refreshed, f.err
}

func TestForceRefresh(t *testing.T) {
	r := &fakeRefresher{refreshed: true}
	if err := forceRefresh(context.Background(), r); err != nil {
		t.Fatalf("forceRefresh: %v", err)
	}
	if !r.forced {
		t.Error("forceRefresh() did not bypass the cooldown")
	}

	if err := forceRefresh(context.Background(), &fakeRefresher{}); err != nil {
		t.Errorf("forceRefresh() without refresher = %v, want nil", err)
	}

	boom := errors.New("token endpoint down")
	if err := forceRefresh(context.Background(), &fakeRefresher{err: boom}); !errors.Is(err, boom) {
		t.Errorf("forceRefresh() = %v, want %v", err, boom)
	}
}
