// Package resource holds the shared objects the editor needs before
// it can paint: the text shaper, the output surface and the color
// theme. They are created asynchronously at startup; Ready reports
// when every slot is filled, and the first paint waits for it.
package resource

import (
	"sync"

	"github.com/mjansen/gapwrite/internal/render/layout"
)

// Surface is the drawing target the editor paints to.
type Surface interface {
	// Size returns the drawable area in surface units.
	Size() (width, height float64)

	// Clear fills the whole surface with the background color.
	Clear()

	// FillRect fills a rectangle with the named style role.
	FillRect(x, y, w, h float64, role StyleRole)

	// DrawText draws shaped text at the given position.
	DrawText(x, y float64, text []rune, role StyleRole)

	// Flush makes everything drawn since the last flush visible.
	Flush()
}

// StyleRole names a themed drawing style.
type StyleRole uint8

const (
	RoleText StyleRole = iota
	RoleSelection
	RoleCaret
	RoleBackground
)

// Theme resolves style roles to concrete colors.
type Theme interface {
	// Foreground returns the foreground color for a role as hex.
	Foreground(role StyleRole) string

	// Background returns the background color for a role as hex.
	Background(role StyleRole) string
}

// Providers is the set of resource slots. Each slot is provided once
// during startup, usually from a task completion, and read from the
// owner goroutine afterwards.
type Providers struct {
	mu sync.RWMutex

	shaper  layout.Shaper
	surface Surface
	theme   Theme

	readyCh chan struct{}
	ready   bool
}

// NewProviders creates an empty provider set.
func NewProviders() *Providers {
	return &Providers{readyCh: make(chan struct{})}
}

// ProvideShaper fills the shaper slot.
func (p *Providers) ProvideShaper(s layout.Shaper) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shaper = s
	p.checkReadyLocked()
}

// ProvideSurface fills the surface slot.
func (p *Providers) ProvideSurface(s Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = s
	p.checkReadyLocked()
}

// ProvideTheme fills the theme slot.
func (p *Providers) ProvideTheme(t Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = t
	p.checkReadyLocked()
}

func (p *Providers) checkReadyLocked() {
	if !p.ready && p.shaper != nil && p.surface != nil && p.theme != nil {
		p.ready = true
		close(p.readyCh)
	}
}

// Shaper returns the shaper slot, or nil before it is provided.
func (p *Providers) Shaper() layout.Shaper {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shaper
}

// Surface returns the surface slot, or nil before it is provided.
func (p *Providers) Surface() Surface {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.surface
}

// Theme returns the theme slot, or nil before it is provided.
func (p *Providers) Theme() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// Ready reports whether every slot has been provided.
func (p *Providers) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

// ReadyCh is closed once every slot has been provided. The event loop
// selects on it to defer the first paint.
func (p *Providers) ReadyCh() <-chan struct{} {
	return p.readyCh
}
