package cache

import "errors"

// Store is a byte cache keyed by Key.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Tiered checks a memory cache before the disk cache and promotes disk hits
// into memory.
type Tiered struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewTiered combines memory and disk. Either may be nil.
func NewTiered(memory *MemoryCache, disk *DiskCache) *Tiered {
	return &Tiered{memory: memory, disk: disk}
}

// Get implements Store.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if t.memory != nil {
		if data, ok := t.memory.Get(key); ok {
			return data, true
		}
	}
	if t.disk == nil {
		return nil, false
	}
	data, ok := t.disk.Get(key)
	if ok && t.memory != nil {
		_ = t.memory.Put(key, data)
	}
	return data, ok
}

// Put implements Store. Values too large for memory still go to disk.
func (t *Tiered) Put(key string, value []byte) error {
	var errs []error
	if t.memory != nil {
		if err := t.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
			errs = append(errs, err)
		}
	}
	if t.disk != nil {
		if err := t.disk.Put(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close saves the disk index.
func (t *Tiered) Close() error {
	if t.disk == nil {
		return nil
	}
	return t.disk.Close()
}
