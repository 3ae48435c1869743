package editor

import (
	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/render/layout"
	"github.com/mjansen/gapwrite/internal/resource"
)

const caretWidth = 1.0

// Resize sets the view size. Layouts survive a resize but everything
// repaints.
func (e *Editor) Resize(width, height float64) {
	e.viewW, e.viewH = width, height
	e.tracker.SetViewHeight(e.visibleLineCount())
	e.clampScroll()
}

// ScrollBy scrolls the view and schedules a full repaint.
func (e *Editor) ScrollBy(dx, dy float64) {
	e.scrollX += dx
	e.scrollY += dy
	e.clampScroll()
	e.tracker.MarkFull()
}

// ScrollOffset returns the current scroll position.
func (e *Editor) ScrollOffset() (x, y float64) {
	return e.scrollX, e.scrollY
}

// EnsureCaretVisible scrolls the minimum distance that brings the
// caret into view.
func (e *Editor) EnsureCaretVisible() {
	snap := e.buf.Snapshot()
	caret := e.sel.Caret()
	pt := snap.OffsetToPoint(caret)
	lh := e.lineHeight()

	top := float64(pt.Line) * lh
	bottom := top + lh
	if top < e.scrollY {
		e.scrollY = top
		e.tracker.MarkFull()
	} else if e.viewH > 0 && bottom > e.scrollY+e.viewH {
		e.scrollY = bottom - e.viewH
		e.tracker.MarkFull()
	}

	line := e.cache.Get(snap, pt.Line)
	x := line.OffsetToX(caret - snap.LineStartOffset(pt.Line))
	if x < e.scrollX {
		e.scrollX = x
		e.tracker.MarkFull()
	} else if e.viewW > 0 && x+caretWidth > e.scrollX+e.viewW {
		e.scrollX = x + caretWidth - e.viewW
		e.tracker.MarkFull()
	}
	e.clampScroll()
}

// Redraw marks the whole view dirty. Used when something outside the
// document changed, like the theme.
func (e *Editor) Redraw() {
	e.tracker.MarkFull()
}

// NeedsRedraw reports whether anything changed since the last Draw.
func (e *Editor) NeedsRedraw() bool {
	return e.tracker.IsDirty()
}

// Draw paints the visible lines, the selection and the caret.
func (e *Editor) Draw() error {
	surface := e.providers.Surface()
	if surface == nil {
		return ErrNoSurface
	}

	snap := e.buf.Snapshot()
	lh := e.lineHeight()
	sel := e.sel.Range()

	surface.Clear()

	first := int(e.scrollY / lh)
	if first < 0 {
		first = 0
	}
	last := first + e.visibleLineCount()
	if last > snap.LineCount()-1 {
		last = snap.LineCount() - 1
	}

	for li := first; li <= last; li++ {
		line := e.cache.Get(snap, li)
		y := float64(li)*lh - e.scrollY

		e.drawLineSelection(surface, snap, line, li, sel, y, lh)
		surface.DrawText(-e.scrollX, y, line.Text, resource.RoleText)
	}

	e.drawCaret(surface, snap, first, last, lh)
	surface.Flush()
	e.tracker.Clear()
	return nil
}

// drawLineSelection fills the selected part of one line. A selection
// that continues onto the next line gets a trailing block standing in
// for the line break.
func (e *Editor) drawLineSelection(surface resource.Surface, snap *buffer.Snapshot, line *layout.Line, li int, sel buffer.Range, y, lh float64) {
	if sel.IsEmpty() {
		return
	}
	lineStart := snap.LineStartOffset(li)
	lineEnd := snap.LineEndOffset(li)
	if sel.End <= lineStart || sel.Start > lineEnd {
		return
	}

	from := sel.Start
	if from < lineStart {
		from = lineStart
	}
	to := sel.End
	if to > lineEnd {
		to = lineEnd
	}

	x0 := line.OffsetToX(from - lineStart)
	x1 := line.OffsetToX(to - lineStart)
	if sel.End > lineEnd {
		x1 += lh / 2
	}
	if x1 > x0 {
		surface.FillRect(x0-e.scrollX, y, x1-x0, lh, resource.RoleSelection)
	}
}

func (e *Editor) drawCaret(surface resource.Surface, snap *buffer.Snapshot, first, last int, lh float64) {
	caret := e.sel.Caret()
	pt := snap.OffsetToPoint(caret)
	if pt.Line < first || pt.Line > last {
		return
	}
	line := e.cache.Get(snap, pt.Line)
	x := line.OffsetToX(caret-snap.LineStartOffset(pt.Line)) - e.scrollX
	y := float64(pt.Line)*lh - e.scrollY
	surface.FillRect(x, y, caretWidth, lh, resource.RoleCaret)
}

func (e *Editor) lineHeight() float64 {
	lh := e.cache.Engine().LineHeight()
	if lh <= 0 {
		lh = 1
	}
	return lh
}

func (e *Editor) visibleLineCount() int {
	lh := e.lineHeight()
	if e.viewH <= 0 {
		return 0
	}
	return int(e.viewH/lh) + 1
}

// hitTestPoint maps a view position to a document offset.
func (e *Editor) hitTestPoint(x, y float64) buffer.Offset {
	snap := e.buf.Snapshot()
	lh := e.lineHeight()

	li := int((y + e.scrollY) / lh)
	if li < 0 {
		li = 0
	}
	if li > snap.LineCount()-1 {
		li = snap.LineCount() - 1
	}

	line := e.cache.Get(snap, li)
	return snap.LineStartOffset(li) + line.HitTest(x+e.scrollX)
}

func (e *Editor) clampScroll() {
	if e.scrollX < 0 {
		e.scrollX = 0
	}
	if e.scrollY < 0 {
		e.scrollY = 0
	}
	maxY := float64(e.buf.LineCount()-1) * e.lineHeight()
	if e.scrollY > maxY {
		e.scrollY = maxY
	}
	if w := e.cache.MaxWidth(); e.scrollX > w {
		e.scrollX = w
	}
}
