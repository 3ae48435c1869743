// Package input defines the keyboard and mouse events the editor
// consumes. The terminal backend translates its native events into
// these types; the edit controller never sees the backend directly.
package input
