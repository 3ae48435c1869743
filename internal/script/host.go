// Package script runs the user's init.lua at startup. The script can
// override configuration values through a small gapwrite table; it
// runs sandboxed with only the safe Lua standard libraries open.
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/mjansen/gapwrite/internal/config"
)

// ErrClosed is returned when a closed host is used.
var ErrClosed = errors.New("script host is closed")

// Host owns the Lua state. It is not goroutine-safe beyond its own
// locking; run scripts from the owner goroutine.
type Host struct {
	mu     sync.Mutex
	l      *lua.LState
	closed bool

	// overrides accumulates gapwrite.set calls, applied to the config
	// after the script finishes.
	overrides map[string]lua.LValue

	// logf receives gapwrite.log output.
	logf func(format string, args ...any)
}

// Option configures a Host.
type Option func(*Host)

// WithLogger routes script log output.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(h *Host) {
		if logf != nil {
			h.logf = logf
		}
	}
}

// NewHost creates a sandboxed Lua host.
func NewHost(opts ...Option) *Host {
	h := &Host{
		overrides: make(map[string]lua.LValue),
		logf:      func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(h)
	}

	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)
	// io, os, debug and package stay closed.

	h.l = l
	h.installAPI()
	return h
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.l.Close()
}

// installAPI registers the gapwrite table.
func (h *Host) installAPI() {
	tbl := h.l.NewTable()

	h.l.SetField(tbl, "set", h.l.NewFunction(func(l *lua.LState) int {
		key := l.CheckString(1)
		value := l.CheckAny(2)
		h.overrides[key] = value
		return 0
	}))

	h.l.SetField(tbl, "log", h.l.NewFunction(func(l *lua.LState) int {
		h.logf("%s", l.CheckString(1))
		return 0
	}))

	h.l.SetGlobal("gapwrite", tbl)
}

// RunFile executes a script file. A missing file is not an error.
func (h *Host) RunFile(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := h.l.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}
	return nil
}

// RunString executes inline script source.
func (h *Host) RunString(src string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	return h.l.DoString(src)
}

// Apply copies accumulated overrides onto a config. Unknown keys and
// mistyped values are reported as errors; valid keys still apply.
func (h *Host) Apply(cfg *config.Config) []error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for key, value := range h.overrides {
		if err := applyOverride(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func applyOverride(cfg *config.Config, key string, value lua.LValue) error {
	switch key {
	case "editor.tab_width":
		n, ok := toInt(value)
		if !ok {
			return fmt.Errorf("%s: expected a number, got %s", key, value.Type())
		}
		cfg.Editor.TabWidth = n
	case "editor.line_ending":
		s, ok := toString(value)
		if !ok {
			return fmt.Errorf("%s: expected a string, got %s", key, value.Type())
		}
		cfg.Editor.LineEnding = strings.ToLower(s)
	case "font.family":
		s, ok := toString(value)
		if !ok {
			return fmt.Errorf("%s: expected a string, got %s", key, value.Type())
		}
		cfg.Font.Family = s
	case "font.size":
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("%s: expected a number, got %s", key, value.Type())
		}
		cfg.Font.Size = f
	case "font.bold":
		b, ok := value.(lua.LBool)
		if !ok {
			return fmt.Errorf("%s: expected a boolean, got %s", key, value.Type())
		}
		cfg.Font.Bold = bool(b)
	case "font.italic":
		b, ok := value.(lua.LBool)
		if !ok {
			return fmt.Errorf("%s: expected a boolean, got %s", key, value.Type())
		}
		cfg.Font.Italic = bool(b)
	case "theme.foreground":
		return applyColor(&cfg.Theme.Foreground, key, value)
	case "theme.background":
		return applyColor(&cfg.Theme.Background, key, value)
	case "theme.selection":
		return applyColor(&cfg.Theme.Selection, key, value)
	case "theme.caret":
		return applyColor(&cfg.Theme.Caret, key, value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func applyColor(dst *string, key string, value lua.LValue) error {
	s, ok := toString(value)
	if !ok {
		return fmt.Errorf("%s: expected a string, got %s", key, value.Type())
	}
	*dst = s
	return nil
}

func toInt(v lua.LValue) (int, bool) {
	n, ok := v.(lua.LNumber)
	return int(n), ok
}

func toFloat(v lua.LValue) (float64, bool) {
	n, ok := v.(lua.LNumber)
	return float64(n), ok
}

func toString(v lua.LValue) (string, bool) {
	s, ok := v.(lua.LString)
	return string(s), ok
}
