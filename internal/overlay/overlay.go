// Package overlay hosts the menu in an override-redirect X11 window that is
// shaped to a disc and grabs pointer and keyboard while it is visible.
package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/render"
	"github.com/1broseidon/halo/internal/x11"
)

const eventMask = xproto.EventMaskExposure |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskKeyPress

const pointerMask = xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease

// Handlers receive input while the overlay is visible. Positions are in
// window coordinates. They run on the X event loop goroutine.
type Handlers struct {
	Motion func(p radial.Point)
	Button func(button int, p radial.Point)
	Key    func(name string)
}

// Window is the overlay. Show, Paint and Hide may be called from any
// goroutine.
type Window struct {
	conn     *x11.Connection
	xu       *xgbutil.XUtil
	renderer *render.Renderer
	handlers Handlers
	logger   *slog.Logger

	mu        sync.Mutex
	win       *xwindow.Window
	place     Placement
	visible   bool
	image     *xgraphics.Image
	connected bool
}

var _ render.Painter = (*Window)(nil)

// New creates the overlay. The X window is created lazily on first Show.
func New(conn *x11.Connection, renderer *render.Renderer, handlers Handlers, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	return &Window{
		conn:     conn,
		xu:       conn.XUtil,
		renderer: renderer,
		handlers: handlers,
		logger:   logger,
	}
}

// Visible reports whether the overlay is mapped.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Show maps the overlay at p, shaped to a disc of radius extent around the
// ring center, and grabs input.
func (w *Window) Show(p Placement, extent float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureWindowLocked(); err != nil {
		return err
	}
	w.place = p

	w.win.MoveResize(p.X, p.Y, p.Size, p.Size)
	if w.conn.Shape {
		rects := DiscRects(p.Center, extent, p.Size)
		shape.Rectangles(w.xu.Conn(), shape.SoSet, shape.SkBounding,
			xproto.ClipOrderingYSorted, w.win.Id, 0, 0, rects)
	}
	w.win.Map()
	w.win.Stack(xproto.StackModeAbove)
	w.visible = true

	if err := w.grabLocked(); err != nil {
		w.hideLocked()
		return err
	}
	return nil
}

// Hide releases the grabs and unmaps the overlay.
func (w *Window) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hideLocked()
	return nil
}

func (w *Window) hideLocked() {
	if !w.visible {
		return
	}
	xproto.UngrabPointer(w.xu.Conn(), xproto.TimeCurrentTime)
	xproto.UngrabKeyboard(w.xu.Conn(), xproto.TimeCurrentTime)
	w.win.Unmap()
	w.visible = false
	w.xu.Sync()
}

// Paint renders sc and copies it to the window.
func (w *Window) Paint(sc render.Scene) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.win == nil || !w.visible {
		return nil
	}
	rgba := w.renderer.Render(sc, w.place.Size, w.place.Size)
	img := xgraphics.NewConvert(w.xu, rgba)
	if err := img.XSurfaceSet(w.win.Id); err != nil {
		img.Destroy()
		return fmt.Errorf("create overlay surface: %w", err)
	}
	img.XDraw()
	img.XPaint(w.win.Id)

	if w.image != nil {
		w.image.Destroy()
	}
	w.image = img
	return nil
}

// Close destroys the overlay window.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hideLocked()
	if w.image != nil {
		w.image.Destroy()
		w.image = nil
	}
	if w.win != nil {
		xevent.Detach(w.xu, w.win.Id)
		w.win.Destroy()
		w.win = nil
	}
}

func (w *Window) ensureWindowLocked() error {
	if w.win != nil {
		return nil
	}
	win, err := xwindow.Generate(w.xu)
	if err != nil {
		return fmt.Errorf("allocate overlay window: %w", err)
	}
	// Value list order follows the mask bits: override_redirect before event_mask.
	err = win.CreateChecked(w.conn.Root, 0, 0, 1, 1,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		1, eventMask)
	if err != nil {
		return fmt.Errorf("create overlay window: %w", err)
	}
	w.win = win
	w.connectLocked()
	return nil
}

func (w *Window) connectLocked() {
	if w.connected {
		return
	}
	id := w.win.Id

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count != 0 {
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.image != nil && w.visible {
			w.image.XPaint(id)
		}
	}).Connect(w.xu, id)

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if w.handlers.Motion != nil {
			w.handlers.Motion(radial.Point{X: float64(ev.EventX), Y: float64(ev.EventY)})
		}
	}).Connect(w.xu, id)

	xevent.ButtonReleaseFun(func(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if w.handlers.Button != nil {
			w.handlers.Button(int(ev.Detail), radial.Point{X: float64(ev.EventX), Y: float64(ev.EventY)})
		}
	}).Connect(w.xu, id)

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		if w.handlers.Key != nil {
			w.handlers.Key(keybind.LookupString(xu, ev.State, ev.Detail))
		}
	}).Connect(w.xu, id)

	w.connected = true
}

// grabLocked takes the pointer and keyboard. When shown from a global
// hotkey the keyboard may still be grabbed by this client, so an
// AlreadyGrabbed reply is retried once after an ungrab.
func (w *Window) grabLocked() error {
	conn := w.xu.Conn()
	id := w.win.Id

	ptr, err := xproto.GrabPointer(conn, false, id, pointerMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
		xproto.TimeCurrentTime).Reply()
	if err != nil {
		return fmt.Errorf("grab pointer: %w", err)
	}
	if ptr.Status != xproto.GrabStatusSuccess {
		w.logger.Warn("pointer grab refused", "status", ptr.Status)
	}

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(conn, false, id, xproto.TimeCurrentTime,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	}
	kb, err := grab()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}
	if kb.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
		if kb, err = grab(); err != nil {
			return fmt.Errorf("grab keyboard: %w", err)
		}
	}
	if kb.Status != xproto.GrabStatusSuccess {
		return errors.New("keyboard grab failed")
	}
	return nil
}
