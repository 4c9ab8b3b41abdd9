// Package hyprland implements platform.Backend over the Hyprland IPC socket.
package hyprland

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hypr "github.com/thiagokokada/hyprland-go"

	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
)

// ErrNotRunning is returned when no Hyprland instance is advertised in the
// environment.
var ErrNotRunning = errors.New("hyprland is not running (HYPRLAND_INSTANCE_SIGNATURE unset)")

// client is the subset of the hyprland-go request client in use.
type client interface {
	Clients() ([]hypr.Client, error)
	Monitors() ([]hypr.Monitor, error)
	CursorPos() (hypr.CursorPos, error)
	Dispatch(params ...string) ([]hypr.Response, error)
}

// Backend talks to the compositor through its request socket.
type Backend struct {
	client client
}

var _ platform.Backend = (*Backend)(nil)

// SocketPath returns the request socket of the running instance.
func SocketPath(getenv func(string) string) (string, error) {
	sig := getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNotRunning
	}
	runtime := getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		runtime = filepath.Join("/run/user", fmt.Sprint(os.Getuid()))
	}
	return filepath.Join(runtime, "hypr", sig, ".socket.sock"), nil
}

// New connects to the instance named by the environment.
func New() (*Backend, error) {
	socket, err := SocketPath(os.Getenv)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(socket); err != nil {
		return nil, fmt.Errorf("hyprland socket: %w", err)
	}
	return &Backend{client: hypr.NewClient(socket)}, nil
}

func (b *Backend) Name() string { return platform.BackendHyprland }

// Windows lists mapped, visible clients keyed by address.
func (b *Backend) Windows() ([]radial.Window, error) {
	clients, err := b.client.Clients()
	if err != nil {
		return nil, fmt.Errorf("hyprland clients: %w", err)
	}
	windows := make([]radial.Window, 0, len(clients))
	for _, c := range clients {
		if !c.Mapped || c.Hidden {
			continue
		}
		windows = append(windows, radial.Window{
			ID:    c.Address,
			Class: c.Class,
			Title: c.Title,
		})
	}
	return windows, nil
}

// ActiveMonitor returns the focused monitor.
func (b *Backend) ActiveMonitor() (platform.Monitor, error) {
	mon, err := b.focusedMonitor()
	if err != nil {
		return platform.Monitor{}, err
	}
	return platform.Monitor{
		Name:   mon.Name,
		Bounds: platform.Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height},
	}, nil
}

func (b *Backend) focusedMonitor() (hypr.Monitor, error) {
	monitors, err := b.client.Monitors()
	if err != nil {
		return hypr.Monitor{}, fmt.Errorf("hyprland monitors: %w", err)
	}
	for _, m := range monitors {
		if m.Focused {
			return m, nil
		}
	}
	if len(monitors) > 0 {
		return monitors[0], nil
	}
	return hypr.Monitor{}, platform.ErrNoMonitor
}

// CursorPosition returns the cursor in global layout coordinates.
func (b *Backend) CursorPosition() (radial.Point, error) {
	pos, err := b.client.CursorPos()
	if err != nil {
		return radial.Point{}, fmt.Errorf("hyprland cursor: %w", err)
	}
	return radial.Point{X: float64(pos.X), Y: float64(pos.Y)}, nil
}

func (b *Backend) Focus(id string) error {
	return b.dispatch("focuswindow", id)
}

func (b *Backend) Close(id string) error {
	return b.dispatch("closewindow", id)
}

func (b *Backend) dispatch(action, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("%s: empty window address", action)
	}
	cmd := fmt.Sprintf("%s address:%s", action, address)
	if _, err := b.client.Dispatch(cmd); err != nil {
		return fmt.Errorf("hyprland dispatch %q: %w", cmd, err)
	}
	return nil
}
