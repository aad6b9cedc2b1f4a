package cache

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrItemTooLarge is returned when an item exceeds the cache capacity.
var ErrItemTooLarge = errors.New("item too large for cache")

// Config configures a DiskCache.
type Config struct {
	// Dir holds the cache files. Defaults to ~/.cache/voxcue/audio.
	Dir string
	// Capacity is the maximum on-disk size in bytes. Defaults to 100MB.
	Capacity int64
	// CompressionLevel is a zstd level (1-22). Defaults to 3.
	CompressionLevel int
}

func (c Config) withDefaults() Config {
	if c.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Dir = filepath.Join(home, ".cache", "voxcue", "audio")
		} else {
			c.Dir = filepath.Join(os.TempDir(), "voxcue-audio")
		}
	}
	if c.Capacity <= 0 {
		c.Capacity = 100 * 1024 * 1024
	}
	if c.CompressionLevel <= 0 {
		c.CompressionLevel = 3
	}
	return c
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}
