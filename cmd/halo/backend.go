package main

import (
	"fmt"
	"os"

	"github.com/1broseidon/halo/internal/hyprland"
	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/x11"
)

// openBackend returns the window-system backend selected by name. conn is
// reused for X11 when non-nil; otherwise a connection is opened and the
// returned func closes it.
func openBackend(name string, conn *x11.Connection) (platform.Backend, func(), error) {
	kind, err := platform.Detect(name, os.Getenv)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case platform.BackendHyprland:
		b, err := hyprland.New()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to hyprland: %w", err)
		}
		return b, func() {}, nil
	default:
		if conn != nil {
			return platform.NewLinuxBackend(conn), func() {}, nil
		}
		c, err := x11.NewConnection()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to display: %w", err)
		}
		return platform.NewLinuxBackend(c), c.Close, nil
	}
}
