// Package app wires the editor together: configuration, scripting,
// the task pool, terminal resources, and the owner event loop.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mjansen/gapwrite/internal/config"
	"github.com/mjansen/gapwrite/internal/editor"
	"github.com/mjansen/gapwrite/internal/engine/buffer"
	"github.com/mjansen/gapwrite/internal/engine/cursor"
	"github.com/mjansen/gapwrite/internal/input"
	"github.com/mjansen/gapwrite/internal/resource"
	"github.com/mjansen/gapwrite/internal/script"
	"github.com/mjansen/gapwrite/internal/task"
	"github.com/mjansen/gapwrite/internal/term"
)

// shutdownTimeout bounds how long Stop waits for in-flight tasks.
const shutdownTimeout = 5 * time.Second

// Options configures the application.
type Options struct {
	// File is opened on startup when non-empty.
	File string

	// ConfigPath locates the TOML configuration. Empty disables the
	// config file and its watcher.
	ConfigPath string

	// ScriptPath locates the Lua startup script. Empty disables
	// scripting.
	ScriptPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogOutput receives log lines. Defaults to stderr, which is only
	// readable when redirected; pass a file for interactive use.
	LogOutput io.Writer

	// Screen substitutes a terminal screen, used with tcell's
	// simulation screen in tests. Nil allocates the real terminal.
	Screen tcell.Screen

	// WatchConfig enables live reload of the config file.
	WatchConfig bool
}

// Application owns every component and runs the event loop.
type Application struct {
	opts   Options
	logger *Logger
	cfg    config.Config

	host      *script.Host
	pool      *task.Pool
	screen    *term.Screen
	surface   *term.Surface
	theme     *term.Theme
	providers *resource.Providers
	editor    *editor.Editor
	watcher   *config.Watcher

	// initErrs carries fatal resource bring-up failures from task
	// completions into the event loop.
	initErrs chan error

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

// New builds the application. Nothing touches the terminal until Run.
func New(opts Options) (*Application, error) {
	a := &Application{
		opts:     opts,
		initErrs: make(chan error, 4),
		done:     make(chan struct{}),
	}

	a.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(opts.LogLevel),
		Output: opts.LogOutput,
	})

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		a.logger.Warnf("config: %v", err)
	}
	a.cfg = cfg

	a.host = script.NewHost(script.WithLogger(a.logger.WithField("component", "script").Infof))
	if opts.ScriptPath != "" {
		if err := a.host.RunFile(opts.ScriptPath); err != nil {
			a.logger.Warnf("script: %v", err)
		}
		for _, err := range a.host.Apply(&a.cfg) {
			a.logger.Warnf("script: %v", err)
		}
		if err := a.cfg.Validate(); err != nil {
			a.logger.Warnf("script: %v, reverting to file config", err)
			a.cfg = cfg
		}
	}

	a.pool = task.NewPool(task.WithPanicHandler(func(t task.Task, recovered any, stack []byte) {
		a.logger.Errorf("task panic: %v\n%s", recovered, stack)
	}))

	if opts.Screen != nil {
		a.screen = term.NewScreenFrom(opts.Screen)
	} else {
		s, err := term.NewScreen()
		if err != nil {
			return nil, &InitError{Component: "terminal", Err: err}
		}
		a.screen = s
	}

	a.providers = resource.NewProviders()
	a.editor = editor.New(a.providers,
		editor.WithBuffer(buffer.NewBuffer(buffer.WithTabWidth(a.cfg.Editor.TabWidth))))
	a.editor.SetFormat(formatFromConfig(a.cfg.Font))

	if opts.ConfigPath != "" && opts.WatchConfig {
		w, err := config.NewWatcher(opts.ConfigPath)
		if err != nil {
			a.logger.Warnf("config watcher: %v", err)
		} else {
			a.watcher = w
		}
	}

	return a, nil
}

// Editor exposes the editor, mainly for tests.
func (a *Application) Editor() *editor.Editor {
	return a.editor
}

// Run initializes the terminal, brings resources up through the task
// pool, and services events until Stop or a quit key. It blocks.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if err := a.screen.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer a.shutdown()

	if err := a.pool.Start(); err != nil {
		return &InitError{Component: "task pool", Err: err}
	}

	a.submitStartupTasks()
	go a.screen.Run()

	return a.eventLoop(ctx)
}

// Stop requests a clean exit. Safe to call from any goroutine.
func (a *Application) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

// submitStartupTasks queues the resource bring-up. Each resource is
// built on a worker and installed on the owner goroutine; the first
// paint waits until all provider slots are filled.
func (a *Application) submitStartupTasks() {
	fatal := func(name string, err error) {
		a.initErrs <- &InitError{Component: name, Err: err}
	}

	a.submit(&resource.Loader[*term.CellShaper]{
		Name: "shaper",
		Build: func(ctx context.Context) (*term.CellShaper, error) {
			return term.NewCellShaper(), nil
		},
		Install: func(s *term.CellShaper) {
			a.providers.ProvideShaper(s)
		},
		OnError: fatal,
	})

	a.submit(&resource.Loader[*term.Theme]{
		Name: "theme",
		Build: func(ctx context.Context) (*term.Theme, error) {
			return term.NewTheme(themeFromConfig(a.cfg.Theme))
		},
		Install: func(t *term.Theme) {
			a.theme = t
			if a.surface != nil {
				a.surface.SetTheme(t)
			}
			a.providers.ProvideTheme(t)
		},
		OnError: fatal,
	})

	a.submit(&resource.Loader[*term.Surface]{
		Name: "surface",
		Build: func(ctx context.Context) (*term.Surface, error) {
			def, err := term.NewTheme(term.DefaultThemeConfig())
			if err != nil {
				return nil, err
			}
			return term.NewSurface(a.screen.Tcell(), def), nil
		},
		Install: func(s *term.Surface) {
			a.surface = s
			if a.theme != nil {
				s.SetTheme(a.theme)
			}
			a.providers.ProvideSurface(s)
			w, h := s.Size()
			a.editor.Resize(w, h)
		},
		OnError: fatal,
	})

	if a.opts.File != "" {
		path := a.opts.File
		a.submit(&resource.Loader[string]{
			Name: "file",
			Build: func(ctx context.Context) (string, error) {
				data, err := os.ReadFile(path)
				return string(data), err
			},
			Install: func(text string) {
				a.editor.OpenText(path, text)
				a.applyLineEnding()
			},
			OnError: func(name string, err error) {
				a.logger.Errorf("open %s: %v", path, err)
			},
		})
	}
}

func (a *Application) submit(t task.Task) {
	if err := a.pool.Submit(t); err != nil {
		a.initErrs <- &InitError{Component: "task pool", Err: err}
	}
}

// eventLoop services one wake at a time on the owner goroutine and
// redraws after each. Task completions run here, which is what makes
// OnDone safe to touch the editor.
func (a *Application) eventLoop(ctx context.Context) error {
	var updates <-chan config.Config
	var watchErrs <-chan error
	if a.watcher != nil {
		updates = a.watcher.Updates()
		watchErrs = a.watcher.Errors()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.done:
			return nil
		case err := <-a.initErrs:
			return err
		case c := <-a.pool.Completions():
			c.Finish()
		case ev := <-a.screen.Events():
			if err := a.handleEvent(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
		case cfg := <-updates:
			a.applyConfig(cfg)
		case err := <-watchErrs:
			a.logger.Warnf("config reload: %v", err)
		}

		if a.providers.Ready() && a.editor.NeedsRedraw() {
			if err := a.editor.Draw(); err != nil {
				a.logger.Errorf("draw: %v", err)
			}
		}
	}
}

func (a *Application) handleEvent(ev input.Event) error {
	switch tev := ev.(type) {
	case input.QuitEvent:
		return ErrQuit
	case input.KeyEvent:
		if tev.Key == input.KeyRune && tev.Mods.HasCtrl() && tev.Rune == 's' {
			a.saveFile()
			return nil
		}
		a.editor.OnKey(tev)
		a.editor.EnsureCaretVisible()
	case input.MouseEvent:
		a.editor.OnMouse(tev)
	case input.ResizeEvent:
		a.screen.Tcell().Sync()
		a.editor.Resize(float64(tev.Width), float64(tev.Height))
	}
	return nil
}

func (a *Application) saveFile() {
	if a.editor.FilePath() == "" {
		a.logger.Warnf("save: no file path")
		return
	}
	if err := a.editor.SaveFile(""); err != nil {
		a.logger.Errorf("save: %v", err)
		return
	}
	a.logger.Infof("saved %s", a.editor.FilePath())
}

// applyConfig applies a reloaded configuration to the live editor.
func (a *Application) applyConfig(cfg config.Config) {
	a.cfg = cfg
	a.logger.Infof("config reloaded")

	a.editor.SetTabWidth(cfg.Editor.TabWidth)
	a.applyLineEnding()

	format := formatFromConfig(cfg.Font)
	if format != a.editor.Format() {
		a.editor.SetFormat(format)
	}

	theme, err := term.NewTheme(themeFromConfig(cfg.Theme))
	if err != nil {
		a.logger.Warnf("config reload: %v", err)
		return
	}
	a.theme = theme
	if a.surface != nil {
		a.surface.SetTheme(theme)
	}
	a.providers.ProvideTheme(theme)
	a.editor.Redraw()
}

// applyLineEnding forces the configured save-time line ending. "auto"
// keeps whatever the loaded file used.
func (a *Application) applyLineEnding() {
	if le, ok := parseLineEnding(a.cfg.Editor.LineEnding); ok {
		a.editor.Buffer().SetLineEnding(le)
	}
}

func (a *Application) shutdown() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warnf("config watcher: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.pool.Stop(ctx); err != nil {
		a.logger.Warnf("task pool: %v", err)
	}

	a.screen.Fini()
	a.host.Close()
}

func formatFromConfig(fc config.FontConfig) cursor.CaretFormat {
	format := cursor.DefaultCaretFormat()
	format.FontFamily = fc.Family
	format.FontSize = fc.Size
	if fc.Bold {
		format.FontWeight = cursor.WeightBold
	}
	if fc.Italic {
		format.FontStyle = cursor.StyleItalic
	}
	return format
}

func themeFromConfig(tc config.ThemeConfig) term.ThemeConfig {
	return term.ThemeConfig{
		Foreground: tc.Foreground,
		Background: tc.Background,
		Selection:  tc.Selection,
		Caret:      tc.Caret,
	}
}

func parseLineEnding(s string) (buffer.LineEnding, bool) {
	switch s {
	case "lf":
		return buffer.LineEndingLF, true
	case "crlf":
		return buffer.LineEndingCRLF, true
	case "cr":
		return buffer.LineEndingCR, true
	default:
		return buffer.LineEndingLF, false
	}
}
