package dirty

import "testing"

func TestSpanNormalize(t *testing.T) {
	s := NewSpan(8, 3)
	if s.StartLine != 3 || s.EndLine != 8 {
		t.Errorf("expected 3..8, got %d..%d", s.StartLine, s.EndLine)
	}
	if s.LineCount() != 6 {
		t.Errorf("expected 6 lines, got %d", s.LineCount())
	}
}

func TestSpanMerge(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
		ok   bool
	}{
		{"overlap", NewSpan(1, 5), NewSpan(3, 8), Span{1, 8}, true},
		{"adjacent", NewSpan(1, 3), NewSpan(4, 6), Span{1, 6}, true},
		{"contained", NewSpan(1, 10), NewSpan(3, 5), Span{1, 10}, true},
		{"disjoint", NewSpan(1, 2), NewSpan(5, 6), Span{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Merge(tt.b)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("merged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerMarkLine(t *testing.T) {
	tr := NewTracker(40)

	if tr.IsDirty() {
		t.Error("new tracker should be clean")
	}

	tr.MarkLine(5)
	if !tr.IsDirty() {
		t.Error("expected dirty after MarkLine")
	}
	if !tr.IsLineDirty(5) {
		t.Error("line 5 should be dirty")
	}
	if tr.IsLineDirty(6) {
		t.Error("line 6 should be clean")
	}
}

func TestTrackerCoalesce(t *testing.T) {
	tr := NewTracker(100)

	tr.MarkLines(1, 3)
	tr.MarkLines(4, 6) // adjacent, should merge
	tr.MarkLines(2, 5) // fully covered

	spans := tr.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %v", len(spans), spans)
	}
	if spans[0] != (Span{1, 6}) {
		t.Errorf("expected 1..6, got %v", spans[0])
	}
}

func TestTrackerThreshold(t *testing.T) {
	tr := NewTracker(10)

	tr.MarkLines(0, 3)
	if tr.NeedsFullRedraw() {
		t.Fatal("4 of 10 lines should not force full redraw")
	}

	tr.MarkLines(5, 8)
	if !tr.NeedsFullRedraw() {
		t.Error("8 of 10 lines should force full redraw")
	}
	if tr.Spans() != nil {
		t.Error("full redraw should drop individual spans")
	}
}

func TestTrackerMarkEdit(t *testing.T) {
	tr := NewTracker(20)

	// Same-line edit stays local.
	tr.MarkEdit(4, 4, 0)
	spans := tr.Spans()
	if len(spans) != 1 || spans[0] != (Span{4, 4}) {
		t.Fatalf("expected single span 4..4, got %v", spans)
	}
	tr.Clear()

	// A line-count change dirties everything below the edit.
	tr.MarkEdit(4, 4, 1)
	if !tr.NeedsFullRedraw() && !tr.IsLineDirty(15) {
		t.Error("lines below a newline insert should be dirty")
	}
}

func TestTrackerResizeForcesFull(t *testing.T) {
	tr := NewTracker(20)

	tr.MarkLine(3)
	tr.SetViewHeight(30)
	if !tr.NeedsFullRedraw() {
		t.Error("resize should force full redraw")
	}

	tr.Clear()
	if tr.IsDirty() {
		t.Error("clear should reset the tracker")
	}
}

func TestTrackerMarksIgnoredDuringFullRedraw(t *testing.T) {
	tr := NewTracker(20)

	tr.MarkFull()
	tr.MarkLine(3)

	st := tr.Stats()
	if st.SpanCount != 0 {
		t.Errorf("expected 0 spans during full redraw, got %d", st.SpanCount)
	}
	if !st.FullRedraw {
		t.Error("expected full redraw flag set")
	}
}
