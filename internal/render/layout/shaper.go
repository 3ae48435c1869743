package layout

import "github.com/mjansen/gapwrite/internal/engine/cursor"

// Cluster is an indivisible unit of shaped text. Hit testing and caret
// motion never land inside a cluster.
type Cluster struct {
	// Start is the rune offset of the cluster within its line.
	Start int

	// RuneLen is the number of runes the cluster spans.
	RuneLen int

	// Advance is the horizontal extent of the cluster.
	Advance float64
}

// Shaper measures text for layout. An implementation shapes a run of
// text with a format into clusters with advances.
type Shaper interface {
	// Shape breaks text into clusters and measures each one.
	Shape(text []rune, format cursor.CaretFormat) []Cluster

	// LineHeight returns the height of a line in the given format.
	LineHeight(format cursor.CaretFormat) float64
}
