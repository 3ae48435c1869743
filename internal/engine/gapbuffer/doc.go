// Package gapbuffer implements the storage engine for document text: a
// rune sequence held in two contiguous regions separated by a movable,
// unused gap. Keeping the gap at the edit point makes the common editing
// pattern (typing, backspacing at the caret) an amortized O(1) operation;
// only relocating the gap across a large distance costs O(distance).
//
// The split storage is an internal detail. Consumers materialize text
// through String, Slice, or Reader and never observe the gap.
//
// Basic usage:
//
//	gb := gapbuffer.FromString("Hello, world!")
//	gb.Insert(5, "!")          // "Hello!, world!"
//	gb.Delete(5, 1)            // "Hello, world!"
//	text := gb.Slice(7, 12)    // "world"
//
// GapBuffer is not safe for concurrent use. The buffer package wraps it
// with locking and higher-level document operations.
package gapbuffer
