// Package term is the terminal backend. It adapts a tcell screen to
// the editor's Surface, measures text with uniseg grapheme widths,
// and translates tcell events into editor input events. Surface units
// are terminal cells, so one column is one advance unit and one row
// is one line height.
package term
