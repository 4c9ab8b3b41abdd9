package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

const sourceIndication = 2 // pager/direct action

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The message is built by hand because the xgbutil ewmh request helpers
// panic on this library version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication, 0)
}

// CloseWindow asks the window manager to close a window via
// _NET_CLOSE_WINDOW, which lets it run the client's WM_DELETE_WINDOW
// protocol.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "_NET_CLOSE_WINDOW", 0, sourceIndication)
}

func (c *Connection) sendRootMessage(windowID xproto.Window, name string, data ...uint32) error {
	atom, err := c.atom(name)
	if err != nil {
		return err
	}

	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	if err := xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check(); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}
