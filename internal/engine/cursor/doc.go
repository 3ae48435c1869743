// Package cursor provides the caret and selection model for the editor.
//
// A Cursor is a single insertion point expressed as a rune offset.
// A Selection pairs an anchor (where selecting started) with a head
// (where the caret currently is); when the two coincide the selection is
// just a caret. Both are immutable value types: movement and extension
// return new values, which keeps state transitions easy to reason about
// in the edit controller.
//
// CaretFormat describes the formatting that applies to text typed at the
// caret, and is what a font chooser mutates.
package cursor
