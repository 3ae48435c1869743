package gapbuffer

import (
	"io"
	"strings"
)

// Reader returns an io.Reader over the full document content. The reader
// joins the two storage regions so callers see one logical stream; it
// reads a snapshot of the content taken at call time.
func (gb *GapBuffer) Reader() io.Reader {
	return strings.NewReader(gb.String())
}

// WriteTo writes the full document content to w, satisfying
// io.WriterTo for save paths. The pre-gap and post-gap regions are
// written in turn without materializing an intermediate copy of the
// whole document.
func (gb *GapBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := io.WriteString(w, string(gb.buf[:gb.gapStart]))
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = io.WriteString(w, string(gb.buf[gb.gapEnd:]))
	total += int64(n)
	return total, err
}
