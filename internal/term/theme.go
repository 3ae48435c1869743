package term

import (
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/mjansen/gapwrite/internal/resource"
)

// Theme maps style roles to colors. The selection background is
// derived by blending the text foreground into the page background,
// so any base palette yields a readable selection.
type Theme struct {
	fg        colorful.Color
	bg        colorful.Color
	selection colorful.Color
	caret     colorful.Color
}

// ThemeConfig is the raw colors a theme is built from.
type ThemeConfig struct {
	Foreground string
	Background string
	// Selection is optional; empty derives it from the other two.
	Selection string
	// Caret is optional; empty uses the foreground.
	Caret string
}

// DefaultThemeConfig is a dark palette.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		Foreground: "#cdd6f4",
		Background: "#1e1e2e",
	}
}

// NewTheme builds a theme from hex colors.
func NewTheme(cfg ThemeConfig) (*Theme, error) {
	fg, err := colorful.Hex(cfg.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := colorful.Hex(cfg.Background)
	if err != nil {
		return nil, err
	}

	t := &Theme{fg: fg, bg: bg}

	if cfg.Selection != "" {
		if t.selection, err = colorful.Hex(cfg.Selection); err != nil {
			return nil, err
		}
	} else {
		t.selection = bg.BlendLab(fg, 0.3).Clamped()
	}

	if cfg.Caret != "" {
		if t.caret, err = colorful.Hex(cfg.Caret); err != nil {
			return nil, err
		}
	} else {
		t.caret = fg
	}

	return t, nil
}

// Foreground returns the foreground hex color for a role.
func (t *Theme) Foreground(role resource.StyleRole) string {
	switch role {
	case resource.RoleCaret:
		return t.bg.Hex()
	default:
		return t.fg.Hex()
	}
}

// Background returns the background hex color for a role.
func (t *Theme) Background(role resource.StyleRole) string {
	switch role {
	case resource.RoleSelection:
		return t.selection.Hex()
	case resource.RoleCaret:
		return t.caret.Hex()
	default:
		return t.bg.Hex()
	}
}

// style returns the tcell style for a role.
func (t *Theme) style(role resource.StyleRole) tcell.Style {
	fg := toTcell(t.fg)
	bg := toTcell(t.bg)
	switch role {
	case resource.RoleSelection:
		bg = toTcell(t.selection)
	case resource.RoleCaret:
		fg, bg = toTcell(t.bg), toTcell(t.caret)
	}
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
