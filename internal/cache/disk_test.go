package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, capacity int64) (*DiskCache, string) {
	t.Helper()
	dir := t.TempDir()
	dc, err := NewDiskCache(Config{Dir: dir, Capacity: capacity})
	require.NoError(t, err)
	return dc, dir
}

func TestDiskCachePutGet(t *testing.T) {
	dc, _ := newTestCache(t, 1<<20)

	audio := bytes.Repeat([]byte("ID3 audio frame "), 512)
	require.NoError(t, dc.Put("k1", audio))

	got, ok := dc.Get("k1")
	require.True(t, ok)
	assert.Equal(t, audio, got)

	_, ok = dc.Get("missing")
	assert.False(t, ok)

	stats := dc.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Items)
	assert.Less(t, stats.Size, int64(len(audio)), "repetitive audio should be stored compressed")
}

func TestDiskCacheIgnoresEmpty(t *testing.T) {
	dc, _ := newTestCache(t, 1<<20)

	require.NoError(t, dc.Put("empty", nil))
	_, ok := dc.Get("empty")
	assert.False(t, ok)
}

func TestDiskCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dc, _ := newTestCache(t, 2500)

	// incompressible enough to stay near 1000 bytes each
	blob := func(seed byte) []byte {
		b := make([]byte, 1000)
		x := uint32(seed) + 1
		for i := range b {
			x = x*1664525 + 1013904223
			b[i] = byte(x >> 24)
		}
		return b
	}

	require.NoError(t, dc.Put("a", blob(1)))
	require.NoError(t, dc.Put("b", blob(2)))
	_, ok := dc.Get("a")
	require.True(t, ok)
	require.NoError(t, dc.Put("c", blob(3)))

	_, ok = dc.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = dc.Get("a")
	assert.True(t, ok)
	_, ok = dc.Get("c")
	assert.True(t, ok)
	assert.EqualValues(t, 1, dc.Stats().Evictions)
}

func TestDiskCacheTooLarge(t *testing.T) {
	dc, _ := newTestCache(t, 10)

	big := make([]byte, 1000)
	for i := range big {
		big[i] = byte(i * 7)
	}
	assert.ErrorIs(t, dc.Put("big", big), ErrItemTooLarge)
}

func TestDiskCachePersistsIndex(t *testing.T) {
	dc, dir := newTestCache(t, 1<<20)
	require.NoError(t, dc.Put("persist", []byte("some audio bytes")))
	require.NoError(t, dc.Close())

	reopened, err := NewDiskCache(Config{Dir: dir, Capacity: 1 << 20})
	require.NoError(t, err)
	got, ok := reopened.Get("persist")
	require.True(t, ok)
	assert.Equal(t, "some audio bytes", string(got))
}

func TestDiskCacheDropsMissingFiles(t *testing.T) {
	dc, dir := newTestCache(t, 1<<20)
	require.NoError(t, dc.Put("gone", []byte("bytes")))

	require.NoError(t, os.Remove(filepath.Join(dir, fileName("gone"))))
	_, ok := dc.Get("gone")
	assert.False(t, ok)
	assert.EqualValues(t, 0, dc.Stats().Items)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", ""), Key("a", "b"))
}
