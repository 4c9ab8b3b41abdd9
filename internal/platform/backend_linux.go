//go:build linux

package platform

import (
	"fmt"


	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

func (b *LinuxBackend) Name() string { return BackendX11 }

// Windows lists normal client windows.
func (b *LinuxBackend) Windows() ([]radial.Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}
	windows := make([]radial.Window, 0, len(clients))
	for _, c := range clients {
		windows = append(windows, radial.Window{
			ID:    FormatWindowID(c.ID),
			Class: c.Class,
			Title: c.Title,
		})
	}
	return windows, nil
}

// ActiveMonitor returns the monitor under the pointer.
func (b *LinuxBackend) ActiveMonitor() (Monitor, error) {
	conn, err := b.connection()
	if err != nil {
		return Monitor{}, err
	}
	mon, err := conn.GetActiveMonitor()
	if err != nil {
		return Monitor{}, fmt.Errorf("%w: %v", ErrNoMonitor, err)
	}
	return Monitor{
		Name:   mon.Name,
		Bounds: Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height},
	}, nil
}

// CursorPosition returns the pointer in root window coordinates.
func (b *LinuxBackend) CursorPosition() (radial.Point, error) {
	conn, err := b.connection()
	if err != nil {
		return radial.Point{}, err
	}
	x, y, err := conn.Pointer()
	if err != nil {
		return radial.Point{}, err
	}
	return radial.Point{X: float64(x), Y: float64(y)}, nil
}

func (b *LinuxBackend) Focus(id string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win, err := ParseWindowID(id)
	if err != nil {
		return err
	}
	return conn.FocusWindow(win)
}

func (b *LinuxBackend) Close(id string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	win, err := ParseWindowID(id)
	if err != nil {
		return err
	}
	return conn.CloseWindow(win)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
