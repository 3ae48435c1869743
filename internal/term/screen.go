package term

import (
	"github.com/gdamore/tcell/v2"

	"github.com/mjansen/gapwrite/internal/input"
)

// Screen owns the tcell screen lifecycle and pumps its events into a
// channel of editor input events.
type Screen struct {
	tc     tcell.Screen
	events chan input.Event
	quit   chan struct{}

	// held tracks the pressed button between events so motion can be
	// classified as drag.
	held input.Button
}

// NewScreen allocates a terminal screen. Init must be called before
// drawing or polling.
func NewScreen() (*Screen, error) {
	tc, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenFrom(tc), nil
}

// NewScreenFrom wraps an existing tcell screen. Used with simulation
// screens in tests.
func NewScreenFrom(tc tcell.Screen) *Screen {
	return &Screen{
		tc:     tc,
		events: make(chan input.Event, 64),
		quit:   make(chan struct{}),
	}
}

// Init initializes the terminal and enables mouse reporting.
func (s *Screen) Init() error {
	if err := s.tc.Init(); err != nil {
		return err
	}
	s.tc.EnableMouse()
	s.tc.EnablePaste()
	return nil
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	close(s.quit)
	s.tc.Fini()
}

// Tcell exposes the underlying screen for the surface.
func (s *Screen) Tcell() tcell.Screen {
	return s.tc
}

// Size returns the screen size in cells.
func (s *Screen) Size() (int, int) {
	return s.tc.Size()
}

// Events returns the translated event channel. Run must be started
// for events to arrive.
func (s *Screen) Events() <-chan input.Event {
	return s.events
}

// Run polls tcell events and translates them until Fini. It runs on
// its own goroutine; the owner loop receives from Events.
func (s *Screen) Run() {
	for {
		ev := s.tc.PollEvent()
		if ev == nil {
			return
		}
		translated := s.translate(ev)
		if translated == nil {
			continue
		}
		select {
		case s.events <- translated:
		case <-s.quit:
			return
		}
	}
}

func (s *Screen) translate(ev tcell.Event) input.Event {
	switch tev := ev.(type) {
	case *tcell.EventKey:
		return s.translateKey(tev)
	case *tcell.EventMouse:
		return s.translateMouse(tev)
	case *tcell.EventResize:
		w, h := tev.Size()
		return input.ResizeEvent{Width: w, Height: h}
	}
	return nil
}

func (s *Screen) translateKey(ev *tcell.EventKey) input.Event {
	mods := translateMods(ev.Modifiers())

	switch ev.Key() {
	case tcell.KeyEscape:
		return input.KeyEvent{Key: input.KeyEscape, Mods: mods}
	case tcell.KeyEnter:
		return input.KeyEvent{Key: input.KeyEnter, Mods: mods}
	case tcell.KeyTab:
		return input.KeyEvent{Key: input.KeyTab, Mods: mods}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return input.KeyEvent{Key: input.KeyBackspace, Mods: mods}
	case tcell.KeyDelete:
		return input.KeyEvent{Key: input.KeyDelete, Mods: mods}
	case tcell.KeyInsert:
		return input.KeyEvent{Key: input.KeyInsert, Mods: mods}
	case tcell.KeyHome:
		return input.KeyEvent{Key: input.KeyHome, Mods: mods}
	case tcell.KeyEnd:
		return input.KeyEvent{Key: input.KeyEnd, Mods: mods}
	case tcell.KeyPgUp:
		return input.KeyEvent{Key: input.KeyPageUp, Mods: mods}
	case tcell.KeyPgDn:
		return input.KeyEvent{Key: input.KeyPageDown, Mods: mods}
	case tcell.KeyUp:
		return input.KeyEvent{Key: input.KeyUp, Mods: mods}
	case tcell.KeyDown:
		return input.KeyEvent{Key: input.KeyDown, Mods: mods}
	case tcell.KeyLeft:
		return input.KeyEvent{Key: input.KeyLeft, Mods: mods}
	case tcell.KeyRight:
		return input.KeyEvent{Key: input.KeyRight, Mods: mods}
	case tcell.KeyCtrlQ:
		return input.QuitEvent{}
	case tcell.KeyRune:
		return input.KeyEvent{Key: input.KeyRune, Rune: ev.Rune(), Mods: mods}
	}

	// Control chords arrive as dedicated keys; normalize to a rune
	// plus the ctrl modifier.
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		r := 'a' + rune(k-tcell.KeyCtrlA)
		return input.KeyEvent{Key: input.KeyRune, Rune: r, Mods: mods | input.ModCtrl}
	}
	return nil
}

func (s *Screen) translateMouse(ev *tcell.EventMouse) input.Event {
	x, y := ev.Position()
	mods := translateMods(ev.Modifiers())
	buttons := ev.Buttons()

	if buttons&tcell.WheelUp != 0 {
		return input.MouseEvent{Action: input.MousePress, Button: input.WheelUp, X: float64(x), Y: float64(y), Mods: mods}
	}
	if buttons&tcell.WheelDown != 0 {
		return input.MouseEvent{Action: input.MousePress, Button: input.WheelDown, X: float64(x), Y: float64(y), Mods: mods}
	}

	pressed := input.ButtonNone
	switch {
	case buttons&tcell.Button1 != 0:
		pressed = input.ButtonLeft
	case buttons&tcell.Button2 != 0:
		pressed = input.ButtonMiddle
	case buttons&tcell.Button3 != 0:
		pressed = input.ButtonRight
	}

	var action input.MouseAction
	button := pressed
	switch {
	case pressed != input.ButtonNone && s.held == input.ButtonNone:
		action = input.MousePress
	case pressed != input.ButtonNone && s.held == pressed:
		action = input.MouseDrag
	case pressed == input.ButtonNone && s.held != input.ButtonNone:
		action = input.MouseRelease
		button = s.held
	default:
		action = input.MouseMove
	}
	s.held = pressed

	return input.MouseEvent{Action: action, Button: button, X: float64(x), Y: float64(y), Mods: mods}
}

func translateMods(m tcell.ModMask) input.Modifier {
	var mods input.Modifier
	if m&tcell.ModShift != 0 {
		mods |= input.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= input.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= input.ModAlt
	}
	return mods
}
