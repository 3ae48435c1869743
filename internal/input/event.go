package input

import "fmt"

// Event is any input event delivered to the editor loop.
type Event interface {
	isEvent()
}

// KeyEvent is a single key press.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Modifier
}

func (KeyEvent) isEvent() {}

// IsRune reports whether the event carries a printable character.
func (e KeyEvent) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

func (e KeyEvent) String() string {
	if e.IsRune() {
		if e.Mods == ModNone {
			return string(e.Rune)
		}
		return fmt.Sprintf("%s+%c", e.Mods, e.Rune)
	}
	if e.Mods == ModNone {
		return e.Key.String()
	}
	return fmt.Sprintf("%s+%s", e.Mods, e.Key)
}

// Button identifies a mouse button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	WheelUp
	WheelDown
)

// String returns the button name.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case WheelUp:
		return "wheel-up"
	case WheelDown:
		return "wheel-down"
	default:
		return "none"
	}
}

// IsWheel reports whether the button is a scroll wheel step.
func (b Button) IsWheel() bool {
	return b == WheelUp || b == WheelDown
}

// MouseAction is the kind of mouse transition.
type MouseAction uint8

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseDrag
	MouseMove
)

// MouseEvent is a mouse press, release, drag, or wheel step. X and Y
// are view-relative positions in the surface's coordinate space.
type MouseEvent struct {
	Action MouseAction
	Button Button
	X      float64
	Y      float64
	Mods   Modifier
}

func (MouseEvent) isEvent() {}

// ResizeEvent reports a new view size.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) isEvent() {}

// QuitEvent asks the application to shut down.
type QuitEvent struct{}

func (QuitEvent) isEvent() {}
