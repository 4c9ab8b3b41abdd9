package platform

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/xgb/xproto"
)

// FormatWindowID renders an X11 window id the way xprop and wmctrl do.
func FormatWindowID(w xproto.Window) string {
	return fmt.Sprintf("0x%08x", uint32(w))
}

// ParseWindowID accepts hex ("0x...") or decimal window ids.
func ParseWindowID(id string) (xproto.Window, error) {
	v, err := strconv.ParseUint(id, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", id, err)
	}
	return xproto.Window(v), nil
}
