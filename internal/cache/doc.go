// Package cache provides stores for synthesized audio, keyed by everything
// that determines the audio (voice, text, prosody, style), so a repeated
// request is answered without calling the synthesis service. A MemoryCache
// serves the current run and a DiskCache persists across runs; Tiered
// combines them.
package cache
