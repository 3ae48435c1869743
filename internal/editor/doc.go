// Package editor is the text edit controller. It owns the buffer, the
// selection and the caret format, translates input events into edits
// and caret motion, and paints the visible lines through the layout
// cache. All methods run on the owner goroutine.
package editor
