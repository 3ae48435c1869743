package term

import (
	"testing"

	"github.com/mjansen/gapwrite/internal/resource"
)

func TestNewThemeDefaults(t *testing.T) {
	th, err := NewTheme(DefaultThemeConfig())
	if err != nil {
		t.Fatalf("NewTheme() failed: %v", err)
	}

	if th.Foreground(resource.RoleText) != "#cdd6f4" {
		t.Errorf("text fg = %s", th.Foreground(resource.RoleText))
	}
	if th.Background(resource.RoleText) != "#1e1e2e" {
		t.Errorf("text bg = %s", th.Background(resource.RoleText))
	}

	// Derived selection sits between foreground and background.
	sel := th.Background(resource.RoleSelection)
	if sel == th.Background(resource.RoleText) || sel == th.Foreground(resource.RoleText) {
		t.Errorf("selection bg %s should be a blend", sel)
	}

	// The caret inverts foreground and background.
	if th.Background(resource.RoleCaret) != "#cdd6f4" {
		t.Errorf("caret bg = %s", th.Background(resource.RoleCaret))
	}
	if th.Foreground(resource.RoleCaret) != "#1e1e2e" {
		t.Errorf("caret fg = %s", th.Foreground(resource.RoleCaret))
	}
}

func TestNewThemeExplicitColors(t *testing.T) {
	th, err := NewTheme(ThemeConfig{
		Foreground: "#ffffff",
		Background: "#000000",
		Selection:  "#264f78",
		Caret:      "#aeafad",
	})
	if err != nil {
		t.Fatalf("NewTheme() failed: %v", err)
	}

	if th.Background(resource.RoleSelection) != "#264f78" {
		t.Errorf("selection bg = %s", th.Background(resource.RoleSelection))
	}
	if th.Background(resource.RoleCaret) != "#aeafad" {
		t.Errorf("caret bg = %s", th.Background(resource.RoleCaret))
	}
}

func TestNewThemeRejectsBadHex(t *testing.T) {
	_, err := NewTheme(ThemeConfig{Foreground: "not-a-color", Background: "#000000"})
	if err == nil {
		t.Error("expected an error for invalid hex")
	}
}
