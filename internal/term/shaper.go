package term

import (
	"github.com/rivo/uniseg"

	"github.com/mjansen/gapwrite/internal/engine/cursor"
	"github.com/mjansen/gapwrite/internal/render/layout"
)

// CellShaper measures text in terminal cells. Graphemes are the
// cluster unit; wide characters advance two cells, combining marks
// stay attached to their base.
type CellShaper struct{}

// NewCellShaper creates a shaper for terminal cells.
func NewCellShaper() *CellShaper {
	return &CellShaper{}
}

// Shape breaks text into grapheme clusters with cell-width advances.
func (s *CellShaper) Shape(text []rune, _ cursor.CaretFormat) []layout.Cluster {
	if len(text) == 0 {
		return nil
	}

	var out []layout.Cluster
	g := uniseg.NewGraphemes(string(text))
	pos := 0
	for g.Next() {
		runes := g.Runes()
		width := g.Width()
		if width < 1 {
			// Zero-width cluster, e.g. a stray combining mark. Give it
			// a cell so it remains addressable.
			width = 1
		}
		out = append(out, layout.Cluster{
			Start:   pos,
			RuneLen: len(runes),
			Advance: float64(width),
		})
		pos += len(runes)
	}
	return out
}

// LineHeight is one terminal row regardless of format.
func (s *CellShaper) LineHeight(_ cursor.CaretFormat) float64 {
	return 1
}
