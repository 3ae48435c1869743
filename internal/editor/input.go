package editor

import (
	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/engine/cursor"
	"github.com/mjansen/gapwrite/internal/input"
)

// OnKey handles a key event.
func (e *Editor) OnKey(ev input.KeyEvent) {
	extend := ev.Mods.HasShift()

	switch ev.Key {
	case input.KeyLeft:
		e.moveHorizontal(-1, extend)
	case input.KeyRight:
		e.moveHorizontal(1, extend)
	case input.KeyUp:
		e.moveVertical(-1, extend)
	case input.KeyDown:
		e.moveVertical(1, extend)
	case input.KeyPageUp:
		e.moveVertical(-e.visibleLineCount(), extend)
	case input.KeyPageDown:
		e.moveVertical(e.visibleLineCount(), extend)
	case input.KeyHome:
		e.moveToLineEdge(true, extend)
	case input.KeyEnd:
		e.moveToLineEdge(false, extend)
	case input.KeyBackspace:
		e.DeleteBackward()
	case input.KeyDelete:
		e.DeleteForward()
	case input.KeyEnter:
		e.InsertText("\n")
	case input.KeyTab:
		e.InsertText("\t")
	case input.KeyRune:
		if ev.Mods.HasCtrl() {
			e.onControlKey(ev.Rune)
			return
		}
		if ev.Rune != 0 {
			e.InsertText(string(ev.Rune))
		}
	}
}

func (e *Editor) onControlKey(r rune) {
	switch r {
	case 'a', 'A':
		e.SelectAll()
	}
}

// OnMouse handles a mouse event.
func (e *Editor) OnMouse(ev input.MouseEvent) {
	if ev.Button.IsWheel() {
		step := 3 * e.lineHeight()
		if ev.Button == input.WheelUp {
			step = -step
		}
		e.ScrollBy(0, step)
		return
	}

	switch ev.Action {
	case input.MousePress:
		if ev.Button != input.ButtonLeft {
			return
		}
		off := e.hitTestPoint(ev.X, ev.Y)
		e.moveCaret(off, ev.Mods.HasShift())
		e.dragging = true
	case input.MouseDrag:
		if !e.dragging {
			return
		}
		e.moveCaret(e.hitTestPoint(ev.X, ev.Y), true)
	case input.MouseRelease:
		e.dragging = false
	}
}

// moveCaret places the caret, extending the selection when asked.
func (e *Editor) moveCaret(to buffer.Offset, extend bool) {
	old := e.sel
	to = clampOffset(to, e.buf.Len())
	if extend {
		e.sel = e.sel.Extend(to)
	} else {
		e.sel = cursor.NewCaret(to)
	}
	e.clearGoalX()
	e.markSelectionDirty(old, e.sel)
}

// moveHorizontal moves the caret one cluster left or right. Without
// shift a non-empty selection collapses to its edge instead.
func (e *Editor) moveHorizontal(dir int, extend bool) {
	if !extend && !e.sel.IsEmpty() {
		r := e.sel.Range()
		if dir < 0 {
			e.moveCaret(r.Start, false)
		} else {
			e.moveCaret(r.End, false)
		}
		return
	}

	caret := e.sel.Caret()
	var to buffer.Offset
	if dir < 0 {
		to = e.prevBoundary(caret)
	} else {
		to = e.nextBoundary(caret)
	}
	e.moveCaret(to, extend)
}

// moveVertical moves the caret by whole lines, keeping the horizontal
// goal position across consecutive moves.
func (e *Editor) moveVertical(delta int, extend bool) {
	snap := e.buf.Snapshot()
	caret := e.sel.Caret()
	pt := snap.OffsetToPoint(caret)

	if !e.hasGoalX {
		line := e.cache.Get(snap, pt.Line)
		e.goalX = line.OffsetToX(caret - snap.LineStartOffset(pt.Line))
		e.hasGoalX = true
	}
	goal := e.goalX

	target := pt.Line + delta
	if target < 0 {
		target = 0
	}
	if target > snap.LineCount()-1 {
		target = snap.LineCount() - 1
	}
	if target == pt.Line {
		// Hitting the first or last line moves to the document edge.
		if delta < 0 {
			e.moveCaret(0, extend)
		} else {
			e.moveCaret(snap.Len(), extend)
		}
		return
	}

	line := e.cache.Get(snap, target)
	to := snap.LineStartOffset(target) + line.HitTest(goal)
	e.moveCaret(to, extend)
	e.goalX = goal
	e.hasGoalX = true
}

// moveToLineEdge moves the caret to the start or end of its line.
func (e *Editor) moveToLineEdge(home bool, extend bool) {
	snap := e.buf.Snapshot()
	pt := snap.OffsetToPoint(e.sel.Caret())
	if home {
		e.moveCaret(snap.LineStartOffset(pt.Line), extend)
	} else {
		e.moveCaret(snap.LineEndOffset(pt.Line), extend)
	}
}

// prevBoundary returns the caret position one cluster before offset,
// crossing onto the previous line at a line start.
func (e *Editor) prevBoundary(offset buffer.Offset) buffer.Offset {
	if offset <= 0 {
		return 0
	}
	snap := e.buf.Snapshot()
	pt := snap.OffsetToPoint(offset)
	start := snap.LineStartOffset(pt.Line)
	if offset == start {
		// Step over the line break.
		return offset - 1
	}
	line := e.cache.Get(snap, pt.Line)
	return start + line.PrevBoundary(offset-start)
}

// nextBoundary returns the caret position one cluster after offset,
// crossing onto the next line at a line end.
func (e *Editor) nextBoundary(offset buffer.Offset) buffer.Offset {
	max := e.buf.Len()
	if offset >= max {
		return max
	}
	snap := e.buf.Snapshot()
	pt := snap.OffsetToPoint(offset)
	start := snap.LineStartOffset(pt.Line)
	end := snap.LineEndOffset(pt.Line)
	if offset >= end {
		// Step over the line break.
		return offset + 1
	}
	line := e.cache.Get(snap, pt.Line)
	return start + line.NextBoundary(offset-start)
}

func (e *Editor) clearGoalX() {
	e.hasGoalX = false
}

func clampOffset(off, max buffer.Offset) buffer.Offset {
	if off < 0 {
		return 0
	}
	if off > max {
		return max
	}
	return off
}
