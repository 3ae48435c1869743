// Package dirty tracks which document lines need re-layout and redraw.
// Regions are coalesced so repeated edits to nearby lines collapse into
// a single span, and heavy churn degrades to a full redraw.
package dirty

import "sync"

// Span is an inclusive range of document lines needing redraw.
type Span struct {
	StartLine int
	EndLine   int
}

// NewSpan creates a span covering the given lines, normalizing order.
func NewSpan(startLine, endLine int) Span {
	if endLine < startLine {
		startLine, endLine = endLine, startLine
	}
	if startLine < 0 {
		startLine = 0
	}
	return Span{StartLine: startLine, EndLine: endLine}
}

// IsEmpty reports whether the span covers no lines.
func (s Span) IsEmpty() bool {
	return s.StartLine > s.EndLine
}

// LineCount returns the number of lines covered.
func (s Span) LineCount() int {
	if s.IsEmpty() {
		return 0
	}
	return s.EndLine - s.StartLine + 1
}

// ContainsLine reports whether the span covers the given line.
func (s Span) ContainsLine(line int) bool {
	return line >= s.StartLine && line <= s.EndLine
}

// Overlaps reports whether two spans share any line.
func (s Span) Overlaps(other Span) bool {
	return s.StartLine <= other.EndLine && s.EndLine >= other.StartLine
}

// Adjacent reports whether two spans touch without overlapping.
func (s Span) Adjacent(other Span) bool {
	return s.EndLine+1 == other.StartLine || other.EndLine+1 == s.StartLine
}

// Merge combines two spans when they overlap or touch.
func (s Span) Merge(other Span) (Span, bool) {
	if !s.Overlaps(other) && !s.Adjacent(other) {
		return Span{}, false
	}
	merged := s
	if other.StartLine < merged.StartLine {
		merged.StartLine = other.StartLine
	}
	if other.EndLine > merged.EndLine {
		merged.EndLine = other.EndLine
	}
	return merged, true
}

// Tracker accumulates dirty line spans between frames.
type Tracker struct {
	mu sync.RWMutex

	spans      []Span
	fullRedraw bool

	// maxSpans bounds the span list before forcing coalescing.
	maxSpans int

	// viewHeight is the number of visible lines. A dirty span covering
	// more than threshold of the view degrades to a full redraw.
	viewHeight int
	threshold  float64
}

// NewTracker creates a tracker for a view of the given height in lines.
func NewTracker(viewHeight int) *Tracker {
	if viewHeight < 0 {
		viewHeight = 0
	}
	return &Tracker{
		spans:      make([]Span, 0, 8),
		maxSpans:   16,
		viewHeight: viewHeight,
		threshold:  0.5,
	}
}

// SetViewHeight updates the visible line count. Resizing always forces
// a full redraw.
func (t *Tracker) SetViewHeight(height int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if height < 0 {
		height = 0
	}
	t.viewHeight = height
	t.markFullLocked()
}

// MarkFull marks the entire view as needing redraw.
func (t *Tracker) MarkFull() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.markFullLocked()
}

func (t *Tracker) markFullLocked() {
	t.fullRedraw = true
	t.spans = t.spans[:0]
}

// MarkLine marks a single document line dirty.
func (t *Tracker) MarkLine(line int) {
	t.MarkLines(line, line)
}

// MarkLines marks an inclusive line range dirty.
func (t *Tracker) MarkLines(startLine, endLine int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fullRedraw {
		return
	}
	t.addLocked(NewSpan(startLine, endLine))
}

// MarkEdit records an edit touching the given line range. When the
// edit changed the line count, every line from the edit start onward
// shifts, so the span extends through the end of the document view.
func (t *Tracker) MarkEdit(startLine, endLine, lineDelta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fullRedraw {
		return
	}

	span := NewSpan(startLine, endLine)
	if lineDelta != 0 {
		// Lines below the edit moved. Without a document length here
		// the safe bound is the visible extent past the edit start.
		span.EndLine = span.StartLine + t.viewHeight
	}
	t.addLocked(span)
}

func (t *Tracker) addLocked(span Span) {
	if span.IsEmpty() {
		return
	}

	for i := range t.spans {
		if merged, ok := t.spans[i].Merge(span); ok {
			t.spans[i] = merged
			t.coalesceLocked()
			t.checkThresholdLocked()
			return
		}
	}

	t.spans = append(t.spans, span)
	if len(t.spans) > t.maxSpans {
		t.coalesceLocked()
	}
	t.checkThresholdLocked()
}

// coalesceLocked merges overlapping or touching spans. O(n^2) is fine
// for the small span counts a frame accumulates.
func (t *Tracker) coalesceLocked() {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(t.spans) && !changed; i++ {
			for j := i + 1; j < len(t.spans); j++ {
				if merged, ok := t.spans[i].Merge(t.spans[j]); ok {
					t.spans[i] = merged
					t.spans = append(t.spans[:j], t.spans[j+1:]...)
					changed = true
					break
				}
			}
		}
	}
}

func (t *Tracker) checkThresholdLocked() {
	if t.viewHeight == 0 {
		return
	}
	dirty := 0
	for _, s := range t.spans {
		dirty += s.LineCount()
	}
	if float64(dirty)/float64(t.viewHeight) > t.threshold {
		t.markFullLocked()
	}
}

// IsDirty reports whether anything needs redrawing.
func (t *Tracker) IsDirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.fullRedraw || len(t.spans) > 0
}

// NeedsFullRedraw reports whether the whole view must repaint.
func (t *Tracker) NeedsFullRedraw() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.fullRedraw
}

// IsLineDirty reports whether the given line needs redrawing.
func (t *Tracker) IsLineDirty(line int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.fullRedraw {
		return true
	}
	for _, s := range t.spans {
		if s.ContainsLine(line) {
			return true
		}
	}
	return false
}

// Spans returns a copy of the current dirty spans. When a full redraw
// is pending the result is nil; callers check NeedsFullRedraw first.
func (t *Tracker) Spans() []Span {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.fullRedraw || len(t.spans) == 0 {
		return nil
	}
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Clear resets the tracker after a frame has been drawn.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spans = t.spans[:0]
	t.fullRedraw = false
}

// SetThreshold sets the dirty ratio that forces a full redraw.
func (t *Tracker) SetThreshold(threshold float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	t.threshold = threshold
}

// Stats describes the tracker state, mostly for tests and debugging.
type Stats struct {
	SpanCount  int
	FullRedraw bool
	ViewHeight int
}

// Stats returns a snapshot of the tracker state.
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Stats{
		SpanCount:  len(t.spans),
		FullRedraw: t.fullRedraw,
		ViewHeight: t.viewHeight,
	}
}
