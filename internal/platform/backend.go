package platform

import (
	"errors"

	"github.com/1broseidon/halo/internal/radial"
)

// ErrNoMonitor is returned when the window system reports no usable monitor.
var ErrNoMonitor = errors.New("no monitor found")

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Monitor is a physical output in global coordinates.
type Monitor struct {
	Name   string
	Bounds Rect
}

// Backend abstracts the window-manager queries and actions the launcher
// needs. Window ids are opaque strings owned by the backend.
type Backend interface {
	Name() string
	Windows() ([]radial.Window, error)
	ActiveMonitor() (Monitor, error)
	// CursorPosition returns the pointer position in global coordinates.
	CursorPosition() (radial.Point, error)
	Focus(id string) error
	Close(id string) error
}
