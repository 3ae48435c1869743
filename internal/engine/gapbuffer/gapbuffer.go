package gapbuffer

import (
	"errors"
	"unicode/utf8"
)

// Offset is a rune position within the logical document.
type Offset = int

// ErrRangeInvalid is returned when a caller passes a range whose start
// exceeds its end. Positions outside the document are clamped, not
// rejected, so this only signals a structurally impossible range.
var ErrRangeInvalid = errors.New("invalid range")

// defaultCapacity is the initial gap size for empty buffers.
const defaultCapacity = 64

// GapBuffer stores a rune sequence as pre-gap and post-gap regions inside
// a single backing slice. Invariants maintained by every operation:
//
//	0 <= gapStart <= gapEnd <= len(buf)
//	Len() == len(buf) - (gapEnd - gapStart)
//
// After any mutation the gap start coincides with the edit position.
type GapBuffer struct {
	buf      []rune
	gapStart int
	gapEnd   int
}

// New creates an empty gap buffer with at least the given capacity.
func New(capacity int) *GapBuffer {
	if capacity < defaultCapacity {
		capacity = defaultCapacity
	}
	return &GapBuffer{
		buf:    make([]rune, capacity),
		gapEnd: capacity,
	}
}

// FromString creates a gap buffer initialized with text. The gap sits at
// the end of the content, ready for appends.
func FromString(s string) *GapBuffer {
	runes := []rune(s)
	capacity := len(runes) + defaultCapacity
	gb := &GapBuffer{
		buf:      make([]rune, capacity),
		gapStart: len(runes),
		gapEnd:   capacity,
	}
	copy(gb.buf, runes)
	return gb
}

// Len returns the logical document length in runes.
func (gb *GapBuffer) Len() int {
	return len(gb.buf) - (gb.gapEnd - gb.gapStart)
}

// Cap returns the total backing capacity including the gap.
func (gb *GapBuffer) Cap() int {
	return len(gb.buf)
}

// GapLen returns the number of unused rune slots in the gap.
func (gb *GapBuffer) GapLen() int {
	return gb.gapEnd - gb.gapStart
}

// IsEmpty returns true if the buffer holds no content.
func (gb *GapBuffer) IsEmpty() bool {
	return gb.Len() == 0
}

// clamp restricts pos to the valid range [0, Len].
func (gb *GapBuffer) clamp(pos Offset) Offset {
	if pos < 0 {
		return 0
	}
	if n := gb.Len(); pos > n {
		return n
	}
	return pos
}

// moveGap relocates the gap so gapStart == pos, shifting content between
// the old and new gap positions across the gap. The cost is proportional
// to the distance moved, which is small for caret-local edits.
func (gb *GapBuffer) moveGap(pos Offset) {
	pos = gb.clamp(pos)
	switch {
	case pos < gb.gapStart:
		// Shift [pos, gapStart) right against the gap end.
		n := gb.gapStart - pos
		copy(gb.buf[gb.gapEnd-n:gb.gapEnd], gb.buf[pos:gb.gapStart])
		gb.gapStart = pos
		gb.gapEnd -= n
	case pos > gb.gapStart:
		// Shift [gapEnd, gapEnd+d) left against the gap start.
		n := pos - gb.gapStart
		copy(gb.buf[gb.gapStart:], gb.buf[gb.gapEnd:gb.gapEnd+n])
		gb.gapStart += n
		gb.gapEnd += n
	}
}

// ensureGap grows the backing slice until the gap holds at least n runes.
// Growth doubles the capacity, or more if the request demands it, and
// relocates both halves so the post-gap region ends flush with the new
// backing slice.
func (gb *GapBuffer) ensureGap(n int) {
	if gb.GapLen() >= n {
		return
	}
	need := n - gb.GapLen()
	newCap := 2 * len(gb.buf)
	if newCap < len(gb.buf)+need {
		newCap = len(gb.buf) + need
	}
	newBuf := make([]rune, newCap)
	copy(newBuf, gb.buf[:gb.gapStart])
	suffix := len(gb.buf) - gb.gapEnd
	copy(newBuf[newCap-suffix:], gb.buf[gb.gapEnd:])
	gb.buf = newBuf
	gb.gapEnd = newCap - suffix
}

// Insert places text at pos, which is clamped to [0, Len]. The gap is
// moved to pos, widened if needed, and consumed by the inserted runes.
// Inserting an empty string is a no-op.
func (gb *GapBuffer) Insert(pos Offset, text string) {
	if text == "" {
		return
	}
	gb.moveGap(pos)
	gb.ensureGap(utf8.RuneCountInString(text))
	for _, r := range text {
		gb.buf[gb.gapStart] = r
		gb.gapStart++
	}
}

// InsertRune places a single rune at pos.
func (gb *GapBuffer) InsertRune(pos Offset, r rune) {
	gb.moveGap(pos)
	gb.ensureGap(1)
	gb.buf[gb.gapStart] = r
	gb.gapStart++
}

// Delete removes up to n runes starting at pos by extending the gap over
// them; no content is copied. The count is clamped to the available
// content and the number actually removed is returned.
func (gb *GapBuffer) Delete(pos Offset, n int) int {
	if n <= 0 {
		return 0
	}
	pos = gb.clamp(pos)
	if avail := gb.Len() - pos; n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}
	gb.moveGap(pos)
	gb.gapEnd += n
	return n
}

// Replace substitutes the range [start, end) with text.
// Returns ErrRangeInvalid if start > end after clamping.
func (gb *GapBuffer) Replace(start, end Offset, text string) error {
	start = gb.clamp(start)
	end = gb.clamp(end)
	if start > end {
		return ErrRangeInvalid
	}
	gb.Delete(start, end-start)
	gb.Insert(start, text)
	return nil
}

// RuneAt returns the rune at pos, or false if pos is outside the content.
func (gb *GapBuffer) RuneAt(pos Offset) (rune, bool) {
	if pos < 0 || pos >= gb.Len() {
		return 0, false
	}
	if pos < gb.gapStart {
		return gb.buf[pos], true
	}
	return gb.buf[pos+gb.GapLen()], true
}

// Slice materializes the range [start, end) as a single string,
// transparently joining content on both sides of the gap. Out-of-range
// bounds are clamped.
func (gb *GapBuffer) Slice(start, end Offset) string {
	start = gb.clamp(start)
	end = gb.clamp(end)
	if start >= end {
		return ""
	}
	out := make([]rune, 0, end-start)
	if start < gb.gapStart {
		hi := end
		if hi > gb.gapStart {
			hi = gb.gapStart
		}
		out = append(out, gb.buf[start:hi]...)
	}
	if end > gb.gapStart {
		lo := start
		if lo < gb.gapStart {
			lo = gb.gapStart
		}
		out = append(out, gb.buf[lo+gb.GapLen():end+gb.GapLen()]...)
	}
	return string(out)
}

// String materializes the whole document.
func (gb *GapBuffer) String() string {
	return gb.Slice(0, gb.Len())
}

// SetText replaces the entire content, keeping the backing slice when it
// is large enough.
func (gb *GapBuffer) SetText(s string) {
	runes := []rune(s)
	if len(runes) > len(gb.buf) {
		gb.buf = make([]rune, len(runes)+defaultCapacity)
	}
	copy(gb.buf, runes)
	gb.gapStart = len(runes)
	gb.gapEnd = len(gb.buf)
}

// IndexRune returns the offset of the first occurrence of r at or after
// pos, or -1 if r does not occur.
func (gb *GapBuffer) IndexRune(pos Offset, r rune) Offset {
	for i := gb.clamp(pos); i < gb.Len(); i++ {
		if c, _ := gb.RuneAt(i); c == r {
			return i
		}
	}
	return -1
}

// LastIndexRune returns the offset of the last occurrence of r strictly
// before pos, or -1 if r does not occur there.
func (gb *GapBuffer) LastIndexRune(pos Offset, r rune) Offset {
	for i := gb.clamp(pos) - 1; i >= 0; i-- {
		if c, _ := gb.RuneAt(i); c == r {
			return i
		}
	}
	return -1
}
