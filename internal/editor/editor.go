package editor

import (
	"errors"
	"os"

	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/engine/cursor"
	"github.com/mjansen/gapwrite/internal/render/dirty"
	"github.com/mjansen/gapwrite/internal/render/layout"
	"github.com/mjansen/gapwrite/internal/render/linecache"
	"github.com/mjansen/gapwrite/internal/resource"
)

// ErrNoSurface is returned when Draw runs before the surface resource
// is available.
var ErrNoSurface = errors.New("no drawing surface provided")

// Editor owns a document and its view state.
type Editor struct {
	buf       *buffer.Buffer
	sel       cursor.Selection
	format    cursor.CaretFormat
	providers *resource.Providers

	cache   *linecache.Cache
	tracker *dirty.Tracker

	// View state in surface units.
	scrollX, scrollY float64
	viewW, viewH     float64

	// dragging is set between a left press and its release.
	dragging bool

	// goalX preserves the caret column across vertical motion.
	goalX    float64
	hasGoalX bool

	filePath string
	modified bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithBuffer sets the initial document buffer.
func WithBuffer(buf *buffer.Buffer) Option {
	return func(e *Editor) { e.buf = buf }
}

// WithCacheConfig overrides the layout cache configuration.
func WithCacheConfig(config linecache.Config) Option {
	return func(e *Editor) {
		e.cache = linecache.New(e.cache.Engine(), config)
	}
}

// New creates an editor. The providers supply the shaper, surface and
// theme; the editor works before they are ready but cannot paint.
func New(providers *resource.Providers, opts ...Option) *Editor {
	e := &Editor{
		buf:       buffer.NewBuffer(),
		format:    cursor.DefaultCaretFormat(),
		providers: providers,
		tracker:   dirty.NewTracker(0),
	}
	engine := layout.NewEngine(deferredShaper{providers}, e.buf.TabWidth())
	e.cache = linecache.New(engine, linecache.DefaultConfig())
	for _, opt := range opts {
		opt(e)
	}
	e.cache.Engine().SetTabWidth(e.buf.TabWidth())
	e.cache.SetDirtyTracker(e.tracker)
	return e
}

// deferredShaper resolves the provider slot at shape time so layouts
// built before startup finishes still work once the shaper arrives.
type deferredShaper struct {
	providers *resource.Providers
}

func (d deferredShaper) Shape(text []rune, format cursor.CaretFormat) []layout.Cluster {
	if s := d.providers.Shaper(); s != nil {
		return s.Shape(text, format)
	}
	// Fallback: one cluster per rune, unit advance.
	out := make([]layout.Cluster, len(text))
	for i := range text {
		out[i] = layout.Cluster{Start: i, RuneLen: 1, Advance: 1}
	}
	return out
}

func (d deferredShaper) LineHeight(format cursor.CaretFormat) float64 {
	if s := d.providers.Shaper(); s != nil {
		return s.LineHeight(format)
	}
	return 1
}

// Buffer returns the underlying document buffer.
func (e *Editor) Buffer() *buffer.Buffer { return e.buf }

// Selection returns the current selection.
func (e *Editor) Selection() cursor.Selection { return e.sel }

// Caret returns the caret offset.
func (e *Editor) Caret() buffer.Offset { return e.sel.Caret() }

// Format returns the caret format.
func (e *Editor) Format() cursor.CaretFormat { return e.format }

// Modified reports whether the document changed since the last load
// or save.
func (e *Editor) Modified() bool { return e.modified }

// FilePath returns the path of the loaded file, if any.
func (e *Editor) FilePath() string { return e.filePath }

// Text returns the full document text.
func (e *Editor) Text() string { return e.buf.Text() }

// SetText replaces the whole document and resets the view.
func (e *Editor) SetText(text string) {
	e.buf.SetText(text)
	e.sel = cursor.NewCaret(0)
	e.scrollX, e.scrollY = 0, 0
	e.modified = true
	e.clearGoalX()
	e.cache.InvalidateAll()
}

// SetSelection sets the selection, clamped to the document.
func (e *Editor) SetSelection(sel cursor.Selection) {
	old := e.sel
	e.sel = sel.Clamp(e.buf.Len())
	e.clearGoalX()
	e.markSelectionDirty(old, e.sel)
}

// SetFormat applies a new caret format. Every cached layout depends
// on the format, so the whole view reshapes.
func (e *Editor) SetFormat(format cursor.CaretFormat) {
	e.format = format
	e.cache.Engine().SetFormat(format)
	e.cache.InvalidateAll()
}

// SetTabWidth changes the tab stop distance and reshapes the view.
func (e *Editor) SetTabWidth(width int) {
	if width == e.buf.TabWidth() {
		return
	}
	e.buf.SetTabWidth(width)
	e.cache.Engine().SetTabWidth(width)
	e.cache.InvalidateAll()
}

// InsertText inserts at the caret, replacing the selection if one
// exists.
func (e *Editor) InsertText(text string) {
	r := e.sel.Range()
	var res buffer.EditResult
	if e.sel.IsEmpty() {
		res = e.buf.Insert(r.Start, text)
	} else {
		var err error
		res, err = e.buf.Replace(r.Start, r.End, text)
		if err != nil {
			return
		}
	}
	e.sel = cursor.NewCaret(res.NewRange.End)
	e.afterEdit(res)
}

// DeleteBackward implements Backspace: delete the selection, or the
// cluster before the caret.
func (e *Editor) DeleteBackward() {
	if !e.sel.IsEmpty() {
		e.deleteSelection()
		return
	}
	caret := e.sel.Caret()
	if caret == 0 {
		return
	}
	prev := e.prevBoundary(caret)
	res, err := e.buf.Replace(prev, caret, "")
	if err != nil {
		return
	}
	e.sel = cursor.NewCaret(prev)
	e.afterEdit(res)
}

// DeleteForward implements Delete: delete the selection, or the
// cluster after the caret.
func (e *Editor) DeleteForward() {
	if !e.sel.IsEmpty() {
		e.deleteSelection()
		return
	}
	caret := e.sel.Caret()
	if caret >= e.buf.Len() {
		return
	}
	next := e.nextBoundary(caret)
	res, err := e.buf.Replace(caret, next, "")
	if err != nil {
		return
	}
	e.sel = cursor.NewCaret(caret)
	e.afterEdit(res)
}

func (e *Editor) deleteSelection() {
	r := e.sel.Range()
	res, err := e.buf.Replace(r.Start, r.End, "")
	if err != nil {
		return
	}
	e.sel = cursor.NewCaret(r.Start)
	e.afterEdit(res)
}

func (e *Editor) afterEdit(res buffer.EditResult) {
	e.modified = true
	e.clearGoalX()
	e.cache.ApplyEdit(res)
}

// SelectAll selects the whole document with the caret at the end.
func (e *Editor) SelectAll() {
	e.SetSelection(cursor.NewSelection(0, e.buf.Len()))
}

// LoadFile replaces the document with the contents of a file.
func (e *Editor) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	e.OpenText(path, string(data))
	return nil
}

// OpenText replaces the document with already-read file contents. The
// read can happen off the owner goroutine; OpenText itself must run on
// it.
func (e *Editor) OpenText(path, text string) {
	e.buf = buffer.NewBufferFromString(text,
		buffer.WithDetectedLineEnding(text),
		buffer.WithTabWidth(e.buf.TabWidth()))
	e.sel = cursor.NewCaret(0)
	e.scrollX, e.scrollY = 0, 0
	e.filePath = path
	e.modified = false
	e.clearGoalX()
	e.cache.InvalidateAll()
}

// SaveFile writes the document to a file using the buffer's line
// ending. An empty path reuses the loaded path.
func (e *Editor) SaveFile(path string) error {
	if path == "" {
		path = e.filePath
	}
	if path == "" {
		return errors.New("no file path")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := e.buf.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	e.filePath = path
	e.modified = false
	return nil
}

func (e *Editor) markSelectionDirty(old, cur cursor.Selection) {
	snap := e.buf.Snapshot()
	for _, s := range []cursor.Selection{old, cur} {
		r := s.Range()
		start := snap.OffsetToPoint(r.Start).Line
		end := snap.OffsetToPoint(r.End).Line
		e.tracker.MarkLines(start, end)
	}
}
