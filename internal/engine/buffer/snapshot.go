package buffer

import "sort"

// Snapshot provides a read-only view of a buffer at a specific point in
// time. The gap buffer is mutable in place, so the snapshot materializes
// the content once; after that it is safe for concurrent access and will
// not change even if the original buffer is modified.
type Snapshot struct {
	text       []rune
	lineStarts []Offset
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return string(s.text)
}

// TextRange returns text in the given rune range, clamped to bounds.
func (s *Snapshot) TextRange(start, end Offset) string {
	start = clampOffset(start, len(s.text))
	end = clampOffset(end, len(s.text))
	if start >= end {
		return ""
	}
	return string(s.text[start:end])
}

// Len returns the total rune length of the snapshot.
func (s *Snapshot) Len() Offset {
	return len(s.text)
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return len(s.text) == 0
}

// RuneAt returns the rune at the given offset.
func (s *Snapshot) RuneAt(offset Offset) (rune, bool) {
	if offset < 0 || offset >= len(s.text) {
		return 0, false
	}
	return s.text[offset], true
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.lineStarts)
}

func (s *Snapshot) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(s.lineStarts) {
		return len(s.lineStarts) - 1
	}
	return line
}

// LineStartOffset returns the rune offset of the start of a line.
func (s *Snapshot) LineStartOffset(line int) Offset {
	return s.lineStarts[s.clampLine(line)]
}

// LineEndOffset returns the rune offset of the end of a line (before the
// newline).
func (s *Snapshot) LineEndOffset(line int) Offset {
	line = s.clampLine(line)
	if line+1 < len(s.lineStarts) {
		return s.lineStarts[line+1] - 1
	}
	return len(s.text)
}

// LineText returns the text of a specific line (without newline).
func (s *Snapshot) LineText(line int) string {
	return string(s.text[s.LineStartOffset(line):s.LineEndOffset(line)])
}

// OffsetToPoint converts a rune offset to line/column.
func (s *Snapshot) OffsetToPoint(offset Offset) Point {
	offset = clampOffset(offset, len(s.text))
	line := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	return Point{Line: line, Column: offset - s.lineStarts[line]}
}

// PointToOffset converts line/column to a rune offset.
func (s *Snapshot) PointToOffset(point Point) Offset {
	start := s.LineStartOffset(point.Line)
	end := s.LineEndOffset(point.Line)
	col := point.Column
	if col < 0 {
		col = 0
	}
	if col > end-start {
		col = end - start
	}
	return start + col
}

// RevisionID returns the revision ID of this snapshot.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// LineEnding returns the snapshot's line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}
