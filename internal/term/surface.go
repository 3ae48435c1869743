package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/mjansen/gapwrite/internal/resource"
)

// Surface draws to a tcell screen in cell coordinates. Fractional
// positions round down to whole cells.
type Surface struct {
	screen tcell.Screen
	theme  *Theme
}

// NewSurface creates a surface over an initialized screen.
func NewSurface(screen tcell.Screen, theme *Theme) *Surface {
	return &Surface{screen: screen, theme: theme}
}

// SetTheme swaps the theme used for subsequent drawing.
func (s *Surface) SetTheme(theme *Theme) {
	s.theme = theme
}

// Size returns the screen size in cells.
func (s *Surface) Size() (float64, float64) {
	w, h := s.screen.Size()
	return float64(w), float64(h)
}

// Clear fills the screen with the background style.
func (s *Surface) Clear() {
	s.screen.Fill(' ', s.theme.style(resource.RoleBackground))
}

// FillRect fills a cell-aligned rectangle with a role's style.
func (s *Surface) FillRect(x, y, w, h float64, role resource.StyleRole) {
	style := s.theme.style(role)
	x0, y0 := int(x), int(y)
	// A sub-cell rectangle, like the caret, still covers one cell.
	x1, y1 := int(x+w), int(y+h)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	sw, sh := s.screen.Size()
	for cy := y0; cy < y1 && cy < sh; cy++ {
		if cy < 0 {
			continue
		}
		for cx := x0; cx < x1 && cx < sw; cx++ {
			if cx < 0 {
				continue
			}
			mainc, combc, _, _ := s.screen.GetContent(cx, cy)
			s.screen.SetContent(cx, cy, mainc, combc, style)
		}
	}
}

// DrawText draws text starting at the given cell, one grapheme per
// cell group. Wide graphemes occupy two cells.
func (s *Surface) DrawText(x, y float64, text []rune, role resource.StyleRole) {
	cy := int(y)
	_, sh := s.screen.Size()
	if cy < 0 || cy >= sh {
		return
	}

	style := s.theme.style(role)
	cx := int(x)
	g := uniseg.NewGraphemes(string(text))
	for g.Next() {
		runes := g.Runes()
		width := g.Width()
		if width < 1 {
			width = 1
		}
		if cx >= 0 {
			var comb []rune
			if len(runes) > 1 {
				comb = runes[1:]
			}
			// Preserve the role's background only where text lands on
			// an already styled cell.
			_, _, existing, _ := s.screen.GetContent(cx, cy)
			_, bg, _ := existing.Decompose()
			s.screen.SetContent(cx, cy, runes[0], comb, style.Background(bg))
		}
		cx += width
	}
}

// Flush makes the drawn frame visible.
func (s *Surface) Flush() {
	s.screen.Show()
}
