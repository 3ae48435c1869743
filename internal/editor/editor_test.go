package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/engine/cursor"
	"github.com/mjansen/gapwrite/internal/input"
	"github.com/mjansen/gapwrite/internal/render/layout"
	"github.com/mjansen/gapwrite/internal/resource"
)

// testShaper shapes each rune as a 10-unit cluster on 20-unit lines.
type testShaper struct{}

func (testShaper) Shape(text []rune, _ cursor.CaretFormat) []layout.Cluster {
	out := make([]layout.Cluster, len(text))
	for i := range text {
		out[i] = layout.Cluster{Start: i, RuneLen: 1, Advance: 10}
	}
	return out
}

func (testShaper) LineHeight(_ cursor.CaretFormat) float64 { return 20 }

// recordingSurface captures draw calls for assertions.
type recordingSurface struct {
	cleared int
	flushed int
	rects   []rectCall
	texts   []textCall
}

type rectCall struct {
	x, y, w, h float64
	role       resource.StyleRole
}

type textCall struct {
	x, y float64
	text string
	role resource.StyleRole
}

func (s *recordingSurface) Size() (float64, float64) { return 800, 600 }
func (s *recordingSurface) Clear()                   { s.cleared++ }
func (s *recordingSurface) Flush()                   { s.flushed++ }

func (s *recordingSurface) FillRect(x, y, w, h float64, role resource.StyleRole) {
	s.rects = append(s.rects, rectCall{x, y, w, h, role})
}

func (s *recordingSurface) DrawText(x, y float64, text []rune, role resource.StyleRole) {
	s.texts = append(s.texts, textCall{x, y, string(text), role})
}

type testTheme struct{}

func (testTheme) Foreground(resource.StyleRole) string { return "#cdd6f4" }
func (testTheme) Background(resource.StyleRole) string { return "#1e1e2e" }

func newTestEditor(text string) (*Editor, *recordingSurface) {
	p := resource.NewProviders()
	surface := &recordingSurface{}
	p.ProvideShaper(testShaper{})
	p.ProvideSurface(surface)
	p.ProvideTheme(testTheme{})

	e := New(p, WithBuffer(buffer.NewBufferFromString(text)))
	e.Resize(800, 600)
	return e, surface
}

func leftClick(e *Editor, x, y float64, mods input.Modifier) {
	e.OnMouse(input.MouseEvent{Action: input.MousePress, Button: input.ButtonLeft, X: x, Y: y, Mods: mods})
	e.OnMouse(input.MouseEvent{Action: input.MouseRelease, Button: input.ButtonLeft, X: x, Y: y, Mods: mods})
}

func typeString(e *Editor, s string) {
	for _, r := range s {
		e.OnKey(input.KeyEvent{Key: input.KeyRune, Rune: r})
	}
}

func TestClickPlacesCaret(t *testing.T) {
	e, _ := newTestEditor("Hello, world!")

	// Each rune is 10 units wide; x=52 lands in the trailing half of
	// rune 5, x=48 in its leading half.
	leftClick(e, 52, 5, input.ModNone)
	if e.Caret() != 5 {
		t.Errorf("caret = %d, want 5", e.Caret())
	}
	if !e.Selection().IsEmpty() {
		t.Error("plain click should not create a selection")
	}

	leftClick(e, 43, 5, input.ModNone)
	if e.Caret() != 4 {
		t.Errorf("caret = %d, want 4", e.Caret())
	}
}

func TestClickPastLineEnd(t *testing.T) {
	e, _ := newTestEditor("ab\nlonger line")

	leftClick(e, 500, 5, input.ModNone)
	if e.Caret() != 2 {
		t.Errorf("caret = %d, want end of first line (2)", e.Caret())
	}
}

func TestShiftClickExtends(t *testing.T) {
	e, _ := newTestEditor("Hello, world!")

	leftClick(e, 0, 5, input.ModNone)
	leftClick(e, 50, 5, input.ModShift)

	sel := e.Selection()
	if sel.IsEmpty() || sel.Start() != 0 || sel.End() != 5 {
		t.Errorf("selection = %v, want 0..5", sel)
	}
}

func TestDragSelects(t *testing.T) {
	e, _ := newTestEditor("Hello, world!")

	e.OnMouse(input.MouseEvent{Action: input.MousePress, Button: input.ButtonLeft, X: 20, Y: 5})
	e.OnMouse(input.MouseEvent{Action: input.MouseDrag, Button: input.ButtonLeft, X: 70, Y: 5})
	e.OnMouse(input.MouseEvent{Action: input.MouseRelease, Button: input.ButtonLeft, X: 70, Y: 5})

	sel := e.Selection()
	if sel.Start() != 2 || sel.End() != 7 {
		t.Errorf("selection = %v, want 2..7", sel)
	}

	// Movement without a held button must not extend.
	e.OnMouse(input.MouseEvent{Action: input.MouseDrag, Button: input.ButtonNone, X: 100, Y: 5})
	if got := e.Selection(); got.End() != 7 {
		t.Errorf("selection changed after release: %v", got)
	}
}

func TestBackspaceRun(t *testing.T) {
	e, _ := newTestEditor("Hello, world!")
	e.SetSelection(cursor.NewCaret(13))

	for i := 0; i < 7; i++ {
		e.OnKey(input.KeyEvent{Key: input.KeyBackspace})
	}

	if got := e.Text(); got != "Hello," {
		t.Errorf("text = %q, want %q", got, "Hello,")
	}
	if e.Caret() != 6 {
		t.Errorf("caret = %d, want 6", e.Caret())
	}

	// Backspace at the start of the document is a no-op.
	e.SetSelection(cursor.NewCaret(0))
	e.OnKey(input.KeyEvent{Key: input.KeyBackspace})
	if got := e.Text(); got != "Hello," {
		t.Errorf("text = %q after no-op backspace", got)
	}
}

func TestArrowThenTypeMatchesDirectInsert(t *testing.T) {
	direct, _ := newTestEditor("abc")
	direct.SetSelection(cursor.NewCaret(1))
	typeString(direct, "X")

	moved, _ := newTestEditor("abc")
	moved.SetSelection(cursor.NewCaret(2))
	moved.OnKey(input.KeyEvent{Key: input.KeyLeft})
	typeString(moved, "X")

	if direct.Text() != moved.Text() {
		t.Errorf("direct %q != moved %q", direct.Text(), moved.Text())
	}
	if direct.Caret() != moved.Caret() {
		t.Errorf("caret %d != %d", direct.Caret(), moved.Caret())
	}
	if direct.Text() != "aXbc" {
		t.Errorf("text = %q, want %q", direct.Text(), "aXbc")
	}
}

func TestTypingReplacesSelection(t *testing.T) {
	e, _ := newTestEditor("Hello, world!")
	e.SetSelection(cursor.NewSelection(7, 12))

	typeString(e, "there")

	if got := e.Text(); got != "Hello, there!" {
		t.Errorf("text = %q", got)
	}
	if e.Caret() != 12 {
		t.Errorf("caret = %d, want 12", e.Caret())
	}
	if !e.Selection().IsEmpty() {
		t.Error("selection should collapse after typing")
	}
}

func TestDeleteForward(t *testing.T) {
	e, _ := newTestEditor("abc")
	e.SetSelection(cursor.NewCaret(1))

	e.OnKey(input.KeyEvent{Key: input.KeyDelete})
	if got := e.Text(); got != "ac" {
		t.Errorf("text = %q, want %q", got, "ac")
	}
	if e.Caret() != 1 {
		t.Errorf("caret = %d, want 1", e.Caret())
	}

	// Delete at the end is a no-op.
	e.SetSelection(cursor.NewCaret(2))
	e.OnKey(input.KeyEvent{Key: input.KeyDelete})
	if got := e.Text(); got != "ac" {
		t.Errorf("text = %q after no-op delete", got)
	}
}

func TestHomeEnd(t *testing.T) {
	e, _ := newTestEditor("first\nsecond line")
	e.SetSelection(cursor.NewCaret(9)) // inside "second line"

	e.OnKey(input.KeyEvent{Key: input.KeyHome})
	if e.Caret() != 6 {
		t.Errorf("Home: caret = %d, want 6", e.Caret())
	}

	e.OnKey(input.KeyEvent{Key: input.KeyEnd})
	if e.Caret() != 17 {
		t.Errorf("End: caret = %d, want 17", e.Caret())
	}

	// Shift+Home selects to line start.
	e.OnKey(input.KeyEvent{Key: input.KeyHome, Mods: input.ModShift})
	sel := e.Selection()
	if sel.Start() != 6 || sel.End() != 17 {
		t.Errorf("selection = %v, want 6..17", sel)
	}
}

func TestVerticalMotionKeepsGoalColumn(t *testing.T) {
	e, _ := newTestEditor("long first line\nab\nanother long line")
	e.SetSelection(cursor.NewCaret(10))

	e.OnKey(input.KeyEvent{Key: input.KeyDown})
	// Line "ab" is short; the caret clamps to its end.
	if got := e.Caret(); got != 18 {
		t.Errorf("caret = %d, want 18 (end of 'ab')", got)
	}

	e.OnKey(input.KeyEvent{Key: input.KeyDown})
	// Goal column 10 is restored on the longer third line.
	snap := e.Buffer().Snapshot()
	pt := snap.OffsetToPoint(e.Caret())
	if pt.Line != 2 || pt.Column != 10 {
		t.Errorf("caret at line %d col %d, want line 2 col 10", pt.Line, pt.Column)
	}
}

func TestUpAtFirstLineMovesToStart(t *testing.T) {
	e, _ := newTestEditor("hello")
	e.SetSelection(cursor.NewCaret(3))

	e.OnKey(input.KeyEvent{Key: input.KeyUp})
	if e.Caret() != 0 {
		t.Errorf("caret = %d, want 0", e.Caret())
	}

	e.OnKey(input.KeyEvent{Key: input.KeyDown})
	if e.Caret() != 5 {
		t.Errorf("caret = %d, want 5", e.Caret())
	}
}

func TestLeftRightCollapseSelection(t *testing.T) {
	e, _ := newTestEditor("abcdef")
	e.SetSelection(cursor.NewSelection(1, 4))

	e.OnKey(input.KeyEvent{Key: input.KeyLeft})
	if e.Caret() != 1 || !e.Selection().IsEmpty() {
		t.Errorf("Left should collapse to start, caret = %d", e.Caret())
	}

	e.SetSelection(cursor.NewSelection(1, 4))
	e.OnKey(input.KeyEvent{Key: input.KeyRight})
	if e.Caret() != 4 {
		t.Errorf("Right should collapse to end, caret = %d", e.Caret())
	}
}

func TestSelectAll(t *testing.T) {
	e, _ := newTestEditor("abc\ndef")

	e.OnKey(input.KeyEvent{Key: input.KeyRune, Rune: 'a', Mods: input.ModCtrl})
	sel := e.Selection()
	if sel.Start() != 0 || sel.End() != 7 {
		t.Errorf("selection = %v, want whole document", sel)
	}
}

func TestEnterSplitsLine(t *testing.T) {
	e, _ := newTestEditor("abcd")
	e.SetSelection(cursor.NewCaret(2))

	e.OnKey(input.KeyEvent{Key: input.KeyEnter})
	if got := e.Text(); got != "ab\ncd" {
		t.Errorf("text = %q", got)
	}
	if e.Caret() != 3 {
		t.Errorf("caret = %d, want 3", e.Caret())
	}
}

func TestDrawPaintsVisibleLines(t *testing.T) {
	e, surface := newTestEditor("one\ntwo\nthree")
	e.SetSelection(cursor.NewSelection(2, 6)) // "e\ntw"

	if err := e.Draw(); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}

	if surface.cleared != 1 || surface.flushed != 1 {
		t.Errorf("cleared=%d flushed=%d", surface.cleared, surface.flushed)
	}
	if len(surface.texts) != 3 {
		t.Fatalf("drew %d lines, want 3", len(surface.texts))
	}
	if surface.texts[1].text != "two" || surface.texts[1].y != 20 {
		t.Errorf("line 1 = %+v", surface.texts[1])
	}

	var selRects, caretRects int
	for _, r := range surface.rects {
		switch r.role {
		case resource.RoleSelection:
			selRects++
		case resource.RoleCaret:
			caretRects++
		}
	}
	if selRects != 2 {
		t.Errorf("selection rects = %d, want 2 (one per touched line)", selRects)
	}
	if caretRects != 1 {
		t.Errorf("caret rects = %d, want 1", caretRects)
	}

	if e.NeedsRedraw() {
		t.Error("dirty state should clear after Draw")
	}
}

func TestDrawWithoutSurface(t *testing.T) {
	p := resource.NewProviders()
	e := New(p)

	if err := e.Draw(); err != ErrNoSurface {
		t.Errorf("Draw() = %v, want ErrNoSurface", err)
	}
}

func TestEditMarksDirty(t *testing.T) {
	e, _ := newTestEditor("abc")
	e.Draw()

	if e.NeedsRedraw() {
		t.Fatal("should be clean after draw")
	}
	typeString(e, "x")
	if !e.NeedsRedraw() {
		t.Error("typing should mark the view dirty")
	}
}

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("alpha\r\nbeta\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, _ := newTestEditor("")
	if err := e.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if got := e.Text(); got != "alpha\nbeta\n" {
		t.Errorf("text = %q, want normalized LF", got)
	}
	if e.Modified() {
		t.Error("freshly loaded document should not be modified")
	}

	typeString(e, "x")
	if !e.Modified() {
		t.Error("typing should set modified")
	}

	if err := e.SaveFile(""); err != nil {
		t.Fatalf("SaveFile() failed: %v", err)
	}
	if e.Modified() {
		t.Error("save should clear modified")
	}

	// The detected CRLF ending is preserved on save.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "xalpha\r\nbeta\r\n" {
		t.Errorf("saved = %q", got)
	}
}

func TestScrollClamped(t *testing.T) {
	e, _ := newTestEditor("a\nb\nc")

	e.ScrollBy(0, -100)
	if _, y := e.ScrollOffset(); y != 0 {
		t.Errorf("scrollY = %v, want 0", y)
	}

	e.ScrollBy(0, 10000)
	if _, y := e.ScrollOffset(); y > 40 {
		t.Errorf("scrollY = %v, want <= 40", y)
	}
}

func TestWheelScrolls(t *testing.T) {
	var text string
	for i := 0; i < 100; i++ {
		text += "line\n"
	}
	e, _ := newTestEditor(text)

	e.OnMouse(input.MouseEvent{Action: input.MousePress, Button: input.WheelDown})
	if _, y := e.ScrollOffset(); y != 60 {
		t.Errorf("scrollY = %v, want 60 (3 lines)", y)
	}

	e.OnMouse(input.MouseEvent{Action: input.MousePress, Button: input.WheelUp})
	if _, y := e.ScrollOffset(); y != 0 {
		t.Errorf("scrollY = %v, want 0", y)
	}
}

func TestSetFormatReshapes(t *testing.T) {
	e, _ := newTestEditor("abc")
	e.Draw()

	f := e.Format()
	f.FontWeight = cursor.WeightBold
	e.SetFormat(f)

	if !e.NeedsRedraw() {
		t.Error("format change should repaint everything")
	}
	if !e.Format().Bold() {
		t.Error("format should be updated")
	}
}
