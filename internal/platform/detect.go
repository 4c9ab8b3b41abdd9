package platform

import (
	"fmt"
	"strings"
)

// Backend names accepted by the "backend" config key.
const (
	BackendAuto     = "auto"
	BackendX11      = "x11"
	BackendHyprland = "hyprland"
)

// Detect resolves a configured backend name. "auto" (or empty) picks
// Hyprland when HYPRLAND_INSTANCE_SIGNATURE is set and X11 otherwise.
func Detect(name string, getenv func(string) string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendAuto:
		if getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
			return BackendHyprland, nil
		}
		return BackendX11, nil
	case BackendX11:
		return BackendX11, nil
	case BackendHyprland:
		return BackendHyprland, nil
	default:
		return "", fmt.Errorf("unknown backend %q", name)
	}
}
