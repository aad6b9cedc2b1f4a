package probe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
		err  bool
	}{
		{"seconds", "9.000000\n", 9 * time.Second, false},
		{"fraction", "0.05", 50 * time.Millisecond, false},
		{"extra lines", "3.5\n[FORMAT]\n", 3500 * time.Millisecond, false},
		{"zero", "0.000000", 0, true},
		{"negative", "-1", 0, true},
		{"not available", "N/A", 0, true},
		{"empty", "", 0, true},
		{"garbage", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if (err != nil) != tt.err {
				t.Fatalf("ParseDuration(%q) error = %v, want error %v", tt.in, err, tt.err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseDuration("0"); !errors.Is(err, ErrNoDuration) {
		t.Errorf("expected ErrNoDuration, got %v", err)
	}
}

func TestDurationMissingFile(t *testing.T) {
	_, err := FFProbe{}.Duration(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
