// Package buffer provides a thread-safe document buffer built on top of
// the gap-buffer storage engine. It is the primary interface for text
// manipulation in the editor.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Amortized O(1) caret-local edits through the underlying gap buffer
//   - A lazily maintained line index for offset/point conversion
//   - Read-only snapshots for concurrent access
//   - Line ending normalization on load and insert
//   - Revision tracking for cache invalidation
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//	buf.Insert(7, "Beautiful ")  // "Hello, Beautiful World!"
//	buf.Delete(0, 7)             // "Beautiful World!"
//
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text()
//	    // Process text...
//	}()
//
// Positions are rune offsets. Out-of-range positions are clamped to the
// document bounds rather than rejected; only structurally impossible
// ranges (start beyond end) produce errors.
//
// All Buffer methods are thread-safe. Mutation is expected to happen on
// the owner goroutine; snapshots give other goroutines a consistent
// immutable view.
package buffer
