package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/mjansen/gapwrite/internal/engine/cursor"
	"github.com/mjansen/gapwrite/internal/render/layout"
)

type stubShaper struct{}

func (stubShaper) Shape(text []rune, _ cursor.CaretFormat) []layout.Cluster { return nil }
func (stubShaper) LineHeight(_ cursor.CaretFormat) float64                  { return 1 }

type stubSurface struct{}

func (stubSurface) Size() (float64, float64)                             { return 80, 24 }
func (stubSurface) Clear()                                               {}
func (stubSurface) FillRect(x, y, w, h float64, role StyleRole)          {}
func (stubSurface) DrawText(x, y float64, text []rune, role StyleRole)   {}
func (stubSurface) Flush()                                               {}

type stubTheme struct{}

func (stubTheme) Foreground(role StyleRole) string { return "#ffffff" }
func (stubTheme) Background(role StyleRole) string { return "#000000" }

func TestProvidersReady(t *testing.T) {
	p := NewProviders()

	if p.Ready() {
		t.Fatal("empty providers should not be ready")
	}

	p.ProvideShaper(stubShaper{})
	p.ProvideSurface(stubSurface{})
	if p.Ready() {
		t.Fatal("two of three slots should not be ready")
	}
	select {
	case <-p.ReadyCh():
		t.Fatal("ReadyCh closed before all slots were filled")
	default:
	}

	p.ProvideTheme(stubTheme{})
	if !p.Ready() {
		t.Fatal("all slots filled, should be ready")
	}
	select {
	case <-p.ReadyCh():
	default:
		t.Fatal("ReadyCh should be closed once ready")
	}
}

func TestProvidersAccessors(t *testing.T) {
	p := NewProviders()

	if p.Shaper() != nil || p.Surface() != nil || p.Theme() != nil {
		t.Error("empty slots should be nil")
	}

	p.ProvideShaper(stubShaper{})
	if p.Shaper() == nil {
		t.Error("shaper slot should be filled")
	}
}

func TestLoaderInstallsOnSuccess(t *testing.T) {
	p := NewProviders()
	l := &Loader[layout.Shaper]{
		Name: "shaper",
		Build: func(ctx context.Context) (layout.Shaper, error) {
			return stubShaper{}, nil
		},
		Install: p.ProvideShaper,
	}

	if err := l.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	l.OnDone(nil)

	if p.Shaper() == nil {
		t.Error("loader should have installed the shaper")
	}
}

func TestLoaderReportsFailure(t *testing.T) {
	buildErr := errors.New("no font source")
	var gotName string
	var gotErr error

	l := &Loader[layout.Shaper]{
		Name: "shaper",
		Build: func(ctx context.Context) (layout.Shaper, error) {
			return nil, buildErr
		},
		Install: func(layout.Shaper) { t.Error("Install must not run on failure") },
		OnError: func(name string, err error) {
			gotName, gotErr = name, err
		},
	}

	err := l.Execute(context.Background())
	if !errors.Is(err, buildErr) {
		t.Fatalf("Execute() = %v, want %v", err, buildErr)
	}
	l.OnDone(err)

	if gotName != "shaper" || !errors.Is(gotErr, buildErr) {
		t.Errorf("OnError got (%q, %v)", gotName, gotErr)
	}
}
