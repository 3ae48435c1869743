package buffer

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}
	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	if b.ID() == "" {
		t.Error("buffer should have an ID")
	}
}

func TestNewBufferFromString(t *testing.T) {
	text := "Hello, World!"
	b := NewBufferFromString(text)

	if b.Text() != text {
		t.Errorf("expected %q, got %q", text, b.Text())
	}
	if b.Len() != len(text) {
		t.Errorf("expected length %d, got %d", len(text), b.Len())
	}
}

func TestNewBufferFromStringMultiline(t *testing.T) {
	b := NewBufferFromString("line1\nline2\nline3")

	if b.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", b.LineCount())
	}
	for i, want := range []string{"line1", "line2", "line3"} {
		if got := b.LineText(i); got != want {
			t.Errorf("line %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestLineEndingNormalization(t *testing.T) {
	b := NewBufferFromString("a\r\nb\rc\nd")

	if b.Text() != "a\nb\nc\nd" {
		t.Errorf("expected normalized content, got %q", b.Text())
	}
	if b.LineCount() != 4 {
		t.Errorf("expected 4 lines, got %d", b.LineCount())
	}
}

func TestBufferInsert(t *testing.T) {
	b := NewBufferFromString("Hello World")

	res := b.Insert(5, ",")
	if res.NewRange.End != 6 {
		t.Errorf("expected end position 6, got %d", res.NewRange.End)
	}
	if b.Text() != "Hello, World" {
		t.Errorf("expected 'Hello, World', got %q", b.Text())
	}
	if res.Delta != 1 {
		t.Errorf("expected delta 1, got %d", res.Delta)
	}
}

func TestBufferInsertClamps(t *testing.T) {
	b := NewBufferFromString("abc")

	b.Insert(100, "!")
	if b.Text() != "abc!" {
		t.Errorf("expected clamp to end, got %q", b.Text())
	}
	b.Insert(-1, "?")
	if b.Text() != "?abc!" {
		t.Errorf("expected clamp to start, got %q", b.Text())
	}
}

func TestBufferInsertNewlines(t *testing.T) {
	b := NewBufferFromString("ab")

	res := b.Insert(1, "1\n2\n3")
	if b.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", b.LineCount())
	}
	if res.LineDelta != 2 {
		t.Errorf("expected line delta 2, got %d", res.LineDelta)
	}
	if got := b.LineText(1); got != "2" {
		t.Errorf("expected '2', got %q", got)
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewBufferFromString("Hello, World")

	res, err := b.Delete(5, 7)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if b.Text() != "HelloWorld" {
		t.Errorf("expected 'HelloWorld', got %q", b.Text())
	}
	if res.OldText != ", " {
		t.Errorf("expected old text ', ', got %q", res.OldText)
	}
}

func TestBufferDeleteInvalidRange(t *testing.T) {
	b := NewBufferFromString("abc")

	if _, err := b.Delete(2, 1); err != ErrRangeInvalid {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestBufferDeleteAcrossLines(t *testing.T) {
	b := NewBufferFromString("one\ntwo\nthree")

	res, err := b.Delete(2, 9)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if b.Text() != "onhree" {
		t.Errorf("expected 'onhree', got %q", b.Text())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	if res.LineDelta != -2 {
		t.Errorf("expected line delta -2, got %d", res.LineDelta)
	}
	if res.StartLine != 0 || res.EndLine != 2 {
		t.Errorf("expected touched lines 0..2, got %d..%d", res.StartLine, res.EndLine)
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewBufferFromString("Hello, World")

	res, err := b.Replace(7, 12, "Go")
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if b.Text() != "Hello, Go" {
		t.Errorf("expected 'Hello, Go', got %q", b.Text())
	}
	if res.NewRange.End != 9 {
		t.Errorf("expected new end 9, got %d", res.NewRange.End)
	}
}

func TestApplyEdit(t *testing.T) {
	b := NewBufferFromString("abc")

	res, err := b.ApplyEdit(NewInsert(1, "X"))
	if err != nil {
		t.Fatalf("apply edit failed: %v", err)
	}
	if b.Text() != "aXbc" {
		t.Errorf("expected 'aXbc', got %q", b.Text())
	}
	if res.Delta != 1 {
		t.Errorf("expected delta 1, got %d", res.Delta)
	}

	if _, err := b.ApplyEdit(Edit{Range: Range{Start: 3, End: 1}}); err != ErrRangeInvalid {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestRevisionChangesOnEdit(t *testing.T) {
	b := NewBufferFromString("abc")
	before := b.RevisionID()

	b.Insert(0, "x")
	if b.RevisionID() == before {
		t.Error("revision should change after insert")
	}
}

func TestOffsetPointRoundTrip(t *testing.T) {
	b := NewBufferFromString("one\ntwo\nthree")

	tests := []struct {
		offset Offset
		point  Point
	}{
		{0, Point{Line: 0, Column: 0}},
		{3, Point{Line: 0, Column: 3}},
		{4, Point{Line: 1, Column: 0}},
		{7, Point{Line: 1, Column: 3}},
		{8, Point{Line: 2, Column: 0}},
		{13, Point{Line: 2, Column: 5}},
	}

	for _, tt := range tests {
		if got := b.OffsetToPoint(tt.offset); got != tt.point {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.point)
		}
		if got := b.PointToOffset(tt.point); got != tt.offset {
			t.Errorf("PointToOffset(%v) = %d, want %d", tt.point, got, tt.offset)
		}
	}
}

func TestPointToOffsetClampsColumn(t *testing.T) {
	b := NewBufferFromString("ab\ncd")

	if got := b.PointToOffset(Point{Line: 0, Column: 99}); got != 2 {
		t.Errorf("expected clamp to line end 2, got %d", got)
	}
	if got := b.PointToOffset(Point{Line: 99, Column: 0}); got != 3 {
		t.Errorf("expected clamp to last line start 3, got %d", got)
	}
}

func TestSetText(t *testing.T) {
	b := NewBufferFromString("old\ncontent")
	rev := b.RevisionID()

	b.SetText("fresh")
	if b.Text() != "fresh" {
		t.Errorf("expected 'fresh', got %q", b.Text())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	if b.RevisionID() == rev {
		t.Error("revision should change after SetText")
	}
}

func TestWriteToCRLF(t *testing.T) {
	b := NewBufferFromString("a\nb", WithCRLF())

	var out bytes.Buffer
	if _, err := b.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if out.String() != "a\r\nb" {
		t.Errorf("expected CRLF output, got %q", out.String())
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewBufferFromString("one\ntwo")
	snap := b.Snapshot()

	b.Insert(0, "X")

	if snap.Text() != "one\ntwo" {
		t.Errorf("snapshot changed after buffer edit: %q", snap.Text())
	}
	if snap.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", snap.LineCount())
	}
	if snap.LineText(1) != "two" {
		t.Errorf("expected 'two', got %q", snap.LineText(1))
	}
	if got := snap.OffsetToPoint(5); (got != Point{Line: 1, Column: 1}) {
		t.Errorf("expected (1:1), got %v", got)
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"a\nb\nc", LineEndingLF},
		{"a\r\nb\r\nc", LineEndingCRLF},
		{"a\rb\rc", LineEndingCR},
		{"no endings", LineEndingLF},
		{"a\r\nb\nc\r\n", LineEndingCRLF},
	}

	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

// TestLineIndexConsistency drives random edits and verifies the
// incrementally maintained line index matches a fresh scan.
func TestLineIndexConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBuffer()
	const alphabet = "abc \n\ndef\n"

	for step := 0; step < 1000; step++ {
		n := b.Len()
		if rng.Intn(3) < 2 || n == 0 {
			pos := 0
			if n > 0 {
				pos = rng.Intn(n + 1)
			}
			count := rng.Intn(6)
			var sb strings.Builder
			for i := 0; i < count; i++ {
				sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
			}
			b.Insert(pos, sb.String())
		} else {
			start := rng.Intn(n)
			end := start + rng.Intn(n-start+1)
			if _, err := b.Delete(start, end); err != nil {
				t.Fatalf("step %d: delete failed: %v", step, err)
			}
		}

		text := b.Text()
		wantLines := strings.Count(text, "\n") + 1
		if got := b.LineCount(); got != wantLines {
			t.Fatalf("step %d: line count %d, want %d (text %q)", step, got, wantLines, text)
		}
		for i := 0; i < b.LineCount(); i++ {
			want := strings.Split(text, "\n")[i]
			if got := b.LineText(i); got != want {
				t.Fatalf("step %d: line %d = %q, want %q", step, i, got, want)
			}
		}
	}
}
