// Package layout turns buffer lines into positioned clusters that hit
// testing and drawing share. A Line is computed once per line revision
// and reused until an edit invalidates it.
package layout

import (
	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/engine/cursor"
)

// Line is the shaped layout of a single buffer line.
type Line struct {
	// LineIndex is the buffer line this layout was computed from.
	LineIndex int

	// StartOffset is the buffer offset of the first rune of the line.
	StartOffset buffer.Offset

	// Text is the line content without its trailing line break.
	Text []rune

	// Clusters are the shaped units in visual order.
	Clusters []Cluster

	// xs[i] is the left edge of cluster i; xs[len(Clusters)] is the
	// total width.
	xs []float64

	// Height is the line height under the format it was shaped with.
	Height float64

	// Revision is the buffer revision the layout was computed at.
	Revision buffer.RevisionID
}

// Engine shapes buffer lines using a Shaper and a tab width.
type Engine struct {
	shaper   Shaper
	tabWidth int
	format   cursor.CaretFormat
}

// NewEngine creates a layout engine.
func NewEngine(shaper Shaper, tabWidth int) *Engine {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return &Engine{
		shaper:   shaper,
		tabWidth: tabWidth,
		format:   cursor.DefaultCaretFormat(),
	}
}

// SetFormat sets the format used to shape subsequent lines. Existing
// layouts keep the format they were shaped with; callers invalidate.
func (e *Engine) SetFormat(format cursor.CaretFormat) {
	e.format = format
}

// Format returns the format currently used for shaping.
func (e *Engine) Format() cursor.CaretFormat {
	return e.format
}

// LineHeight returns the line height under the current format.
func (e *Engine) LineHeight() float64 {
	return e.shaper.LineHeight(e.format)
}

// TabWidth returns the tab width in space advances.
func (e *Engine) TabWidth() int {
	return e.tabWidth
}

// SetTabWidth sets the tab width in space advances.
func (e *Engine) SetTabWidth(width int) {
	if width < 1 {
		width = 1
	}
	e.tabWidth = width
}

// LayoutLine shapes the given line of a snapshot.
func (e *Engine) LayoutLine(snap *buffer.Snapshot, line int) *Line {
	text := []rune(snap.LineText(line))
	l := &Line{
		LineIndex:   line,
		StartOffset: snap.LineStartOffset(line),
		Text:        text,
		Height:      e.shaper.LineHeight(e.format),
		Revision:    snap.RevisionID(),
	}
	e.shape(l)
	return l
}

// shape builds the cluster list and prefix positions, expanding tabs
// to the next tab stop.
func (e *Engine) shape(l *Line) {
	spaceAdv := e.shaper.Shape([]rune{' '}, e.format)
	space := 1.0
	if len(spaceAdv) == 1 && spaceAdv[0].Advance > 0 {
		space = spaceAdv[0].Advance
	}
	tabStop := float64(e.tabWidth) * space

	l.Clusters = l.Clusters[:0]
	x := 0.0

	// Shape between tabs so cluster offsets stay line-relative.
	runStart := 0
	flush := func(end int) {
		if end <= runStart {
			return
		}
		for _, c := range e.shaper.Shape(l.Text[runStart:end], e.format) {
			c.Start += runStart
			l.Clusters = append(l.Clusters, c)
			x += c.Advance
		}
	}

	for i, r := range l.Text {
		if r != '\t' {
			continue
		}
		flush(i)
		next := (int(x/tabStop) + 1)
		adv := float64(next)*tabStop - x
		l.Clusters = append(l.Clusters, Cluster{Start: i, RuneLen: 1, Advance: adv})
		x += adv
		runStart = i + 1
	}
	flush(len(l.Text))

	l.xs = make([]float64, len(l.Clusters)+1)
	pos := 0.0
	for i, c := range l.Clusters {
		l.xs[i] = pos
		pos += c.Advance
	}
	l.xs[len(l.Clusters)] = pos
}

// Width returns the total advance of the line.
func (l *Line) Width() float64 {
	if len(l.xs) == 0 {
		return 0
	}
	return l.xs[len(l.xs)-1]
}

// RuneLen returns the number of runes in the line (without line break).
func (l *Line) RuneLen() int {
	return len(l.Text)
}

// HitTest maps a horizontal position to a rune offset within the line.
// A hit past the midpoint of a cluster resolves to its trailing edge,
// matching how a mouse click places the caret.
func (l *Line) HitTest(x float64) int {
	if x <= 0 || len(l.Clusters) == 0 {
		return 0
	}
	if x >= l.Width() {
		return len(l.Text)
	}
	for i, c := range l.Clusters {
		left, right := l.xs[i], l.xs[i+1]
		if x < right {
			if x-left > c.Advance/2 {
				return c.Start + c.RuneLen
			}
			return c.Start
		}
	}
	return len(l.Text)
}

// OffsetToX returns the leading edge x of the cluster containing the
// given line-relative rune offset. Offsets past the end map to the
// line width.
func (l *Line) OffsetToX(runeOffset int) float64 {
	if runeOffset <= 0 {
		return 0
	}
	for i, c := range l.Clusters {
		if runeOffset < c.Start+c.RuneLen {
			if runeOffset <= c.Start {
				return l.xs[i]
			}
			// Inside a multi-rune cluster; snap to its leading edge.
			return l.xs[i]
		}
	}
	return l.Width()
}

// ClusterAt returns the cluster containing the given rune offset and
// its index, or false when the offset is past the end of the line.
func (l *Line) ClusterAt(runeOffset int) (Cluster, int, bool) {
	for i, c := range l.Clusters {
		if runeOffset >= c.Start && runeOffset < c.Start+c.RuneLen {
			return c, i, true
		}
	}
	return Cluster{}, 0, false
}

// SnapToCluster rounds a line-relative offset down to the nearest
// cluster boundary so the caret never lands inside a cluster.
func (l *Line) SnapToCluster(runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	if runeOffset >= len(l.Text) {
		return len(l.Text)
	}
	if c, _, ok := l.ClusterAt(runeOffset); ok {
		return c.Start
	}
	return runeOffset
}

// NextBoundary returns the cluster boundary after the given offset.
func (l *Line) NextBoundary(runeOffset int) int {
	for _, c := range l.Clusters {
		if runeOffset < c.Start+c.RuneLen && runeOffset >= c.Start {
			return c.Start + c.RuneLen
		}
	}
	if runeOffset < 0 {
		return 0
	}
	if runeOffset >= len(l.Text) {
		return len(l.Text)
	}
	return runeOffset + 1
}

// PrevBoundary returns the cluster boundary at or before the offset
// preceding the given one.
func (l *Line) PrevBoundary(runeOffset int) int {
	if runeOffset <= 0 {
		return 0
	}
	prev := 0
	for _, c := range l.Clusters {
		if c.Start >= runeOffset {
			break
		}
		prev = c.Start
	}
	return prev
}
