package cursor

// FontWeight mirrors the common font weight scale.
type FontWeight int

const (
	WeightNormal FontWeight = 400
	WeightBold   FontWeight = 700
)

// FontStyle selects the slant of the face.
type FontStyle uint8

const (
	StyleNormal FontStyle = iota
	StyleItalic
)

// CaretFormat is the formatting that applies to text typed at the
// current caret position. A format chooser mutates it; when a selection
// exists the format is also applied to the selected range.
type CaretFormat struct {
	FontFamily    string
	FontSize      float64 // points
	FontWeight    FontWeight
	FontStyle     FontStyle
	Underline     bool
	Strikethrough bool
	Color         string // hex, e.g. "#1e1e2e"
}

// DefaultCaretFormat returns the format used before any restyling.
func DefaultCaretFormat() CaretFormat {
	return CaretFormat{
		FontFamily: "monospace",
		FontSize:   11,
		FontWeight: WeightNormal,
		FontStyle:  StyleNormal,
		Color:      "#000000",
	}
}

// Bold reports whether the weight is at or above the bold threshold.
func (f CaretFormat) Bold() bool {
	return f.FontWeight >= WeightBold
}

// Italic reports whether the style is slanted.
func (f CaretFormat) Italic() bool {
	return f.FontStyle == StyleItalic
}
