package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// ClientWindow is a managed top-level window.
type ClientWindow struct {
	ID    xproto.Window
	Class string
	Title string
}

// ClientWindows lists normal application windows from _NET_CLIENT_LIST.
// Windows without a WM_CLASS are kept with an empty class.
func (c *Connection) ClientWindows() ([]ClientWindow, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	windows := make([]ClientWindow, 0, len(clients))
	for _, id := range clients {
		if !c.IsNormalWindow(id) || c.isSkipped(id) {
			continue
		}
		windows = append(windows, ClientWindow{
			ID:    id,
			Class: c.WindowClass(id),
			Title: c.WindowTitle(id),
		})
	}
	return windows, nil
}

// WindowClass returns the class part of WM_CLASS.
func (c *Connection) WindowClass(id xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, id)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(id xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, id); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, id); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	return len(types) == 0
}

// isSkipped reports windows that ask to stay out of taskbars and pagers.
func (c *Connection) isSkipped(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_SKIP_TASKBAR" {
			return true
		}
	}
	return false
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
