package caption

import (
	"errors"
	"os/exec"
	"reflect"
	"testing"
	"time"
)

func TestNewCommandSplitter(t *testing.T) {
	s, err := NewCommandSplitter("  python3 -m splitter  ", 0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Command != "python3" || !reflect.DeepEqual(s.Args, []string{"-m", "splitter"}) {
		t.Errorf("unexpected command %q %q", s.Command, s.Args)
	}
	if s.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v", s.Timeout)
	}

	if _, err := NewCommandSplitter("   ", time.Second); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestCommandSplitterReadsLines(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	s, err := NewCommandSplitter("cat", time.Second)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Split("first sentence\n\n  second sentence  \n")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"first sentence", "second sentence"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestCommandSplitterFailure(t *testing.T) {
	s, err := NewCommandSplitter("voxcue-no-such-splitter", time.Second)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Split("text")
	var segErr *SegmentationError
	if !errors.As(err, &segErr) {
		t.Fatalf("expected *SegmentationError, got %v", err)
	}
	if segErr.Splitter != "voxcue-no-such-splitter" {
		t.Errorf("Splitter = %q", segErr.Splitter)
	}
}
