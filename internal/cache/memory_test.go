package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheLRU(t *testing.T) {
	c := NewMemoryCache(10)

	require.NoError(t, c.Put("a", []byte("1234")))
	require.NoError(t, c.Put("b", []byte("1234")))
	_, ok := c.Get("a")
	require.True(t, ok)

	require.NoError(t, c.Put("c", []byte("1234")))
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)

	s := c.Stats()
	assert.EqualValues(t, 2, s.Items)
	assert.EqualValues(t, 8, s.Size)
	assert.EqualValues(t, 1, s.Evictions)
}

func TestMemoryCacheReplace(t *testing.T) {
	c := NewMemoryCache(10)
	require.NoError(t, c.Put("a", []byte("12")))
	require.NoError(t, c.Put("a", []byte("123456")))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "123456", string(got))
	assert.EqualValues(t, 6, c.Stats().Size)
}

func TestMemoryCacheTooLarge(t *testing.T) {
	c := NewMemoryCache(3)
	assert.ErrorIs(t, c.Put("a", []byte("1234")), ErrItemTooLarge)
}

func TestTieredPromotesDiskHits(t *testing.T) {
	disk, err := NewDiskCache(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, disk.Put("k", []byte("audio")))

	mem := NewMemoryCache(1024)
	tiered := NewTiered(mem, disk)

	got, ok := tiered.Get("k")
	require.True(t, ok)
	assert.Equal(t, "audio", string(got))

	got, ok = mem.Get("k")
	require.True(t, ok, "disk hit is promoted to memory")
	assert.Equal(t, "audio", string(got))
	require.NoError(t, tiered.Close())
}

func TestTieredPutLargeValueGoesToDisk(t *testing.T) {
	disk, err := NewDiskCache(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	tiered := NewTiered(NewMemoryCache(2), disk)

	require.NoError(t, tiered.Put("k", []byte("larger than memory")))
	got, ok := disk.Get("k")
	require.True(t, ok)
	assert.Equal(t, "larger than memory", string(got))
}

func TestTieredNil(t *testing.T) {
	tiered := NewTiered(nil, nil)
	_, ok := tiered.Get("k")
	assert.False(t, ok)
	assert.NoError(t, tiered.Put("k", []byte("v")))
	assert.NoError(t, tiered.Close())
}
