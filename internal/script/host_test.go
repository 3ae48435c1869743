package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mjansen/gapwrite/internal/config"
)

func TestRunStringAppliesOverrides(t *testing.T) {
	h := NewHost()
	defer h.Close()

	err := h.RunString(`
		gapwrite.set("editor.tab_width", 2)
		gapwrite.set("font.size", 13.5)
		gapwrite.set("theme.background", "#000000")
		gapwrite.set("font.bold", true)
	`)
	if err != nil {
		t.Fatalf("RunString() failed: %v", err)
	}

	cfg := config.Default()
	if errs := h.Apply(&cfg); len(errs) != 0 {
		t.Fatalf("Apply() errors: %v", errs)
	}

	if cfg.Editor.TabWidth != 2 {
		t.Errorf("tab_width = %d, want 2", cfg.Editor.TabWidth)
	}
	if cfg.Font.Size != 13.5 {
		t.Errorf("font.size = %v, want 13.5", cfg.Font.Size)
	}
	if cfg.Theme.Background != "#000000" {
		t.Errorf("background = %q", cfg.Theme.Background)
	}
	if !cfg.Font.Bold {
		t.Error("font.bold should be set")
	}
}

func TestApplyRejectsUnknownAndMistyped(t *testing.T) {
	h := NewHost()
	defer h.Close()

	err := h.RunString(`
		gapwrite.set("no.such.key", 1)
		gapwrite.set("editor.tab_width", "eight")
		gapwrite.set("font.family", "JetBrains Mono")
	`)
	if err != nil {
		t.Fatalf("RunString() failed: %v", err)
	}

	cfg := config.Default()
	errs := h.Apply(&cfg)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}

	// The valid override still lands.
	if cfg.Font.Family != "JetBrains Mono" {
		t.Errorf("font.family = %q", cfg.Font.Family)
	}
	// The mistyped one leaves the default alone.
	if cfg.Editor.TabWidth != 4 {
		t.Errorf("tab_width = %d, want default 4", cfg.Editor.TabWidth)
	}
}

func TestRunFileMissingIsNoop(t *testing.T) {
	h := NewHost()
	defer h.Close()

	if err := h.RunFile(filepath.Join(t.TempDir(), "init.lua")); err != nil {
		t.Errorf("missing file should not error, got %v", err)
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "init.lua")
	src := `gapwrite.set("editor.line_ending", "LF")`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	h := NewHost()
	defer h.Close()

	if err := h.RunFile(path); err != nil {
		t.Fatalf("RunFile() failed: %v", err)
	}

	cfg := config.Default()
	h.Apply(&cfg)
	if cfg.Editor.LineEnding != "lf" {
		t.Errorf("line_ending = %q, want lowercased %q", cfg.Editor.LineEnding, "lf")
	}
}

func TestScriptErrorSurfaces(t *testing.T) {
	h := NewHost()
	defer h.Close()

	err := h.RunString(`error("broken init")`)
	if err == nil || !strings.Contains(err.Error(), "broken init") {
		t.Errorf("expected script error, got %v", err)
	}
}

func TestSandboxExcludesOS(t *testing.T) {
	h := NewHost()
	defer h.Close()

	if err := h.RunString(`if os ~= nil then error("os is open") end`); err != nil {
		t.Errorf("os library should not be available: %v", err)
	}
	if err := h.RunString(`if io ~= nil then error("io is open") end`); err != nil {
		t.Errorf("io library should not be available: %v", err)
	}
}

func TestLogGoesToLogger(t *testing.T) {
	var got string
	h := NewHost(WithLogger(func(format string, args ...any) {
		got = args[0].(string)
	}))
	defer h.Close()

	if err := h.RunString(`gapwrite.log("hello from lua")`); err != nil {
		t.Fatalf("RunString() failed: %v", err)
	}
	if got != "hello from lua" {
		t.Errorf("logged %q", got)
	}
}

func TestClosedHost(t *testing.T) {
	h := NewHost()
	h.Close()
	h.Close() // idempotent

	if err := h.RunString(`return 1`); err != ErrClosed {
		t.Errorf("RunString() = %v, want ErrClosed", err)
	}
}
