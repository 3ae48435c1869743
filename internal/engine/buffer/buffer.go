package buffer

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mjansen/gapwrite/internal/engine/gapbuffer"
)

// ErrRangeInvalid is returned when a range's start exceeds its end.
var ErrRangeInvalid = errors.New("invalid range")

// LineEnding specifies the line ending style used when writing the
// document out. Content is stored internally with LF endings so the
// line index deals with single-rune breaks.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer wraps a gap buffer with document-level functionality: a line
// index, revision tracking, and line ending handling.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	gb         *gapbuffer.GapBuffer
	id         string
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int

	// lineStarts[i] is the offset of the first rune of line i.
	// lineStarts[0] is always 0. Maintained incrementally on edits.
	lineStarts []Offset
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		gb:         gapbuffer.New(0),
		id:         uuid.New().String(),
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
		lineStarts: []Offset{0},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.gb = gapbuffer.FromString(normalizeToLF(s))
	b.lineStarts = scanLineStarts(b.gb)
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeToLF converts all line endings in s to LF.
func normalizeToLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// runeLen counts the runes in s.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// scanLineStarts builds a fresh line index from buffer content.
func scanLineStarts(gb *gapbuffer.GapBuffer) []Offset {
	starts := []Offset{0}
	for pos := gb.IndexRune(0, '\n'); pos >= 0; pos = gb.IndexRune(pos+1, '\n') {
		starts = append(starts, pos+1)
	}
	return starts
}

// ID returns the document's unique identifier.
func (b *Buffer) ID() string {
	return b.id
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.String()
}

// TextRange returns text in the given rune range, clamped to the
// document bounds.
func (b *Buffer) TextRange(start, end Offset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.Slice(start, end)
}

// Len returns the total rune length of the buffer.
func (b *Buffer) Len() Offset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.Len()
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.IsEmpty()
}

// RuneAt returns the rune at the given offset.
func (b *Buffer) RuneAt(offset Offset) (rune, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.RuneAt(offset)
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lineStarts)
}

// clampLine restricts line to [0, LineCount-1]. Caller holds the lock.
func (b *Buffer) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(b.lineStarts) {
		return len(b.lineStarts) - 1
	}
	return line
}

// lineStartLocked returns the start offset of line. Caller holds the lock.
func (b *Buffer) lineStartLocked(line int) Offset {
	return b.lineStarts[b.clampLine(line)]
}

// lineEndLocked returns the end offset of line (before the newline).
// Caller holds the lock.
func (b *Buffer) lineEndLocked(line int) Offset {
	line = b.clampLine(line)
	if line+1 < len(b.lineStarts) {
		return b.lineStarts[line+1] - 1
	}
	return b.gb.Len()
}

// LineStartOffset returns the rune offset of the start of a line.
func (b *Buffer) LineStartOffset(line int) Offset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineStartLocked(line)
}

// LineEndOffset returns the rune offset of the end of a line (before the
// newline).
func (b *Buffer) LineEndOffset(line int) Offset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEndLocked(line)
}

// LineText returns the text of a specific line (without newline).
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.Slice(b.lineStartLocked(line), b.lineEndLocked(line))
}

// LineLen returns the length of a specific line in runes (without
// newline).
func (b *Buffer) LineLen(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEndLocked(line) - b.lineStartLocked(line)
}

// Coordinate Conversion

// OffsetToPoint converts a rune offset to line/column.
func (b *Buffer) OffsetToPoint(offset Offset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offsetToPointLocked(offset)
}

func (b *Buffer) offsetToPointLocked(offset Offset) Point {
	if offset < 0 {
		offset = 0
	}
	if n := b.gb.Len(); offset > n {
		offset = n
	}
	// First line whose start is beyond the offset; the offset's line is
	// the one before it.
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	return Point{Line: line, Column: offset - b.lineStarts[line]}
}

// PointToOffset converts line/column to a rune offset. The column is
// clamped to the line's length.
func (b *Buffer) PointToOffset(point Point) Offset {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.lineStartLocked(point.Line)
	end := b.lineEndLocked(point.Line)
	col := point.Column
	if col < 0 {
		col = 0
	}
	if col > end-start {
		col = end - start
	}
	return start + col
}

// Write Operations

// Insert inserts text at the given offset, which is clamped to the
// document bounds. Returns the result describing the applied edit.
func (b *Buffer) Insert(offset Offset, text string) EditResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.replaceLocked(offset, offset, text)
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end Offset) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start > end {
		return EditResult{}, ErrRangeInvalid
	}
	return b.replaceLocked(start, end, ""), nil
}

// Replace replaces text in the given range with new text.
func (b *Buffer) Replace(start, end Offset, text string) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start > end {
		return EditResult{}, ErrRangeInvalid
	}
	return b.replaceLocked(start, end, text), nil
}

// ApplyEdit applies a single edit to the buffer.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	if !edit.Range.IsValid() {
		return EditResult{}, ErrRangeInvalid
	}
	return b.Replace(edit.Range.Start, edit.Range.End, edit.NewText)
}

// SetText replaces the entire document content. This is the full-load
// path used when opening a file.
func (b *Buffer) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gb.SetText(normalizeToLF(s))
	b.lineStarts = scanLineStarts(b.gb)
	b.revisionID = NewRevisionID()
}

// replaceLocked performs the edit and incrementally maintains the line
// index. Caller holds the write lock. Offsets are clamped.
func (b *Buffer) replaceLocked(start, end Offset, text string) EditResult {
	docLen := b.gb.Len()
	start = clampOffset(start, docLen)
	end = clampOffset(end, docLen)

	text = normalizeToLF(text)
	oldText := b.gb.Slice(start, end)

	startPoint := b.offsetToPointLocked(start)
	endPoint := b.offsetToPointLocked(end)

	b.gb.Delete(start, end-start)
	b.gb.Insert(start, text)

	newLen := runeLen(text)
	delta := newLen - (end - start)
	b.updateLineIndex(start, end, text, delta)
	b.revisionID = NewRevisionID()

	return EditResult{
		OldRange:  Range{Start: start, End: end},
		NewRange:  Range{Start: start, End: start + newLen},
		OldText:   oldText,
		Delta:     delta,
		LineDelta: strings.Count(text, "\n") - strings.Count(oldText, "\n"),
		StartLine: startPoint.Line,
		EndLine:   endPoint.Line,
		Revision:  b.revisionID,
	}
}

func clampOffset(pos, max Offset) Offset {
	if pos < 0 {
		return 0
	}
	if pos > max {
		return max
	}
	return pos
}

// updateLineIndex splices the line index for a replacement of
// [start, end) by text. A newline at position p contributes a line start
// at p+1, so removing [start, end) drops starts in (start, end] and the
// remainder shifts by the length delta.
func (b *Buffer) updateLineIndex(start, end Offset, text string, delta int) {
	keep := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > start
	})
	tail := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > end
	})

	updated := b.lineStarts[:keep:keep]
	pos := start
	for _, r := range text {
		pos++
		if r == '\n' {
			updated = append(updated, pos)
		}
	}
	for _, s := range b.lineStarts[tail:] {
		updated = append(updated, s+delta)
	}
	b.lineStarts = updated
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetLineEnding sets the line ending style used when writing out.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 {
		b.tabWidth = width
	}
}

// WriteTo writes the document to w using the configured line ending
// style, satisfying io.WriterTo for the save path.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()
	text := b.gb.String()
	le := b.lineEnding
	b.mu.RUnlock()

	if le != LineEndingLF {
		text = strings.ReplaceAll(text, "\n", le.Sequence())
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	starts := make([]Offset, len(b.lineStarts))
	copy(starts, b.lineStarts)

	return &Snapshot{
		text:       []rune(b.gb.String()),
		lineStarts: starts,
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}
