// Package daemon runs the menu: one controller goroutine owns the engine
// state and processes every show, hide, input and reload event in order.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/ipc"
	"github.com/1broseidon/halo/internal/overlay"
	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/render"
)

// ErrStopped is returned by event methods once Run has returned.
var ErrStopped = errors.New("controller stopped")

// Mouse buttons as reported by X.
const (
	ButtonLeft  = 1
	ButtonRight = 3
)

// Overlay is the surface the menu is shown on.
type Overlay interface {
	Show(p overlay.Placement, extent float64) error
	Hide() error
	Paint(sc render.Scene) error
	Visible() bool
}

// Resolver turns a configured app query into an application.
type Resolver interface {
	Resolve(query, class, exec string) radial.App
}

// Loader reads the configuration and returns it with its path.
type Loader func() (*config.Config, string, error)

// Options wires a controller. Backend, Overlay and Resolver are required.
type Options struct {
	Backend    platform.Backend
	Overlay    Overlay
	Resolver   Resolver
	Config     *config.Config // initial config; nil means the setup placeholder
	ConfigPath string
	Load       Loader               // defaults to config.LoadOrSetup
	Launch     platform.Launcher    // defaults to platform.Launch
	OnConfig   func(*config.Config) // called after every successful reload
	Logger     *slog.Logger
}

type eventKind int

const (
	evShow eventKind = iota
	evHide
	evToggle
	evReload
	evRebuild
	evMotion
	evButton
	evKey
)

func (k eventKind) String() string {
	switch k {
	case evShow:
		return "show"
	case evHide:
		return "hide"
	case evToggle:
		return "toggle"
	case evReload:
		return "reload"
	case evRebuild:
		return "rebuild"
	case evMotion:
		return "motion"
	case evButton:
		return "button"
	case evKey:
		return "key"
	default:
		return "unknown"
	}
}

type event struct {
	kind   eventKind
	point  radial.Point
	button int
	key    string
	reply  chan error
}

// Controller is the single owner of the radial state.
type Controller struct {
	backend  platform.Backend
	overlay  Overlay
	resolver Resolver
	load     Loader
	launch   platform.Launcher
	onConfig func(*config.Config)
	logger   *slog.Logger

	events  chan event
	stopped chan struct{}

	// Owned by the Run goroutine.
	cfg        *config.Config
	configPath string
	state      *radial.State

	mu     sync.RWMutex
	status ipc.StatusData
	scene  render.Scene
}

var _ ipc.Handler = (*Controller)(nil)

// New creates a controller and binds the slots of the initial config.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Load == nil {
		opts.Load = config.LoadOrSetup
	}
	if opts.Launch == nil {
		opts.Launch = platform.Launch
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.SetupConfig()
	}

	c := &Controller{
		backend:    opts.Backend,
		overlay:    opts.Overlay,
		resolver:   opts.Resolver,
		load:       opts.Load,
		launch:     opts.Launch,
		onConfig:   opts.OnConfig,
		logger:     opts.Logger,
		events:     make(chan event, 32),
		stopped:    make(chan struct{}),
		configPath: opts.ConfigPath,
		state:      radial.NewState([radial.SlotCount]radial.Slot{}, cfg.Appearance.Params()),
	}
	c.apply(cfg)
	c.publish()
	return c
}

// Run processes events until ctx is cancelled. The overlay is hidden on
// return.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.stopped)
	c.logger.Info("controller started", "backend", c.backend.Name())

	for {
		select {
		case <-ctx.Done():
			if c.overlay.Visible() {
				_ = c.overlay.Hide()
			}
			c.logger.Info("controller stopped")
			return
		case ev := <-c.events:
			err := c.dispatch(ev)
			c.publish()
			if ev.reply != nil {
				ev.reply <- err
			}
		}
	}
}

// Show maps the menu around the cursor on the active monitor.
func (c *Controller) Show() error { return c.post(event{kind: evShow}) }

// Hide unmaps the menu.
func (c *Controller) Hide() error { return c.post(event{kind: evHide}) }

// Toggle shows the menu when hidden and hides it otherwise.
func (c *Controller) Toggle() error { return c.post(event{kind: evToggle}) }

// Reload re-reads the config and rebinds every slot. When the config
// cannot be loaded the current slots stay in place.
func (c *Controller) Reload() error { return c.post(event{kind: evReload}) }

// RebuildSlots resolves the configured slots again without re-reading the
// config, picking up changed desktop entries.
func (c *Controller) RebuildSlots() error { return c.post(event{kind: evRebuild}) }

// CursorMove feeds a pointer position in overlay coordinates.
func (c *Controller) CursorMove(p radial.Point) error {
	return c.post(event{kind: evMotion, point: p})
}

// Click feeds a button release in overlay coordinates.
func (c *Controller) Click(button int, p radial.Point) error {
	return c.post(event{kind: evButton, button: button, point: p})
}

// Key feeds a key press by keysym name, e.g. "a" or "Escape".
func (c *Controller) Key(name string) error {
	return c.post(event{kind: evKey, key: name})
}

// Status returns the state after the last processed event.
func (c *Controller) Status() ipc.StatusData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := c.status
	st.Slots = append([]string(nil), c.status.Slots...)
	return st
}

// Layout returns the scene of the last layout pass.
func (c *Controller) Layout() ipc.LayoutData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sc := c.scene
	sc.Items = append([]render.Item(nil), c.scene.Items...)
	return ipc.LayoutData{Visible: c.status.Visible, Scene: sc}
}

func (c *Controller) post(ev event) error {
	ev.reply = make(chan error, 1)
	select {
	case c.events <- ev:
	case <-c.stopped:
		return ErrStopped
	}
	select {
	case err := <-ev.reply:
		return err
	case <-c.stopped:
		return ErrStopped
	}
}

func (c *Controller) dispatch(ev event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("controller panic recovered", "event", ev.kind, "error", r)
			err = fmt.Errorf("%s: internal error: %v", ev.kind, r)
		}
	}()

	switch ev.kind {
	case evShow:
		return c.show()
	case evHide:
		return c.hide()
	case evToggle:
		if c.overlay.Visible() {
			return c.hide()
		}
		return c.show()
	case evReload:
		return c.reload()
	case evRebuild:
		c.apply(c.cfg)
		return c.repaint()
	case evMotion:
		return c.cursorMove(ev.point)
	case evButton:
		return c.click(ev.button)
	case evKey:
		return c.key(ev.key)
	}
	return nil
}

func (c *Controller) show() error {
	mon, err := c.backend.ActiveMonitor()
	if err != nil {
		return fmt.Errorf("active monitor: %w", err)
	}
	cursor, err := c.backend.CursorPosition()
	if err != nil {
		c.logger.Warn("cursor position unavailable, centering on monitor", "error", err)
		b := mon.Bounds
		cursor = radial.Point{X: float64(b.X) + float64(b.Width)/2, Y: float64(b.Y) + float64(b.Height)/2}
	}
	windows, err := c.backend.Windows()
	if err != nil {
		c.logger.Warn("window list unavailable", "error", err)
		windows = nil
	}
	for i := range windows {
		if windows[i].Icon == "" && windows[i].Class != "" {
			windows[i].Icon = c.resolver.Resolve(windows[i].Class, "", "").Icon
		}
	}

	height := float64(mon.Bounds.Height)
	p := c.state.Params()
	extent := p.ExtentRadius(p.ScaleFactor(height))
	place := overlay.Place(cursor, mon.Bounds, extent)
	c.state.Refresh(place.Center, windows, height)

	if err := c.overlay.Show(place, extent); err != nil {
		return fmt.Errorf("show overlay: %w", err)
	}
	c.logger.Debug("menu shown",
		"monitor", mon.Name,
		"scale", c.state.ScaleFactor,
		"windows", len(windows),
		"subslots", len(c.state.Layout.SubSlots))
	return c.repaint()
}

func (c *Controller) hide() error {
	if !c.overlay.Visible() {
		return nil
	}
	if err := c.overlay.Hide(); err != nil {
		return fmt.Errorf("hide overlay: %w", err)
	}
	return nil
}

func (c *Controller) repaint() error {
	if !c.overlay.Visible() {
		return nil
	}
	if err := c.overlay.Paint(render.BuildScene(c.state)); err != nil {
		return fmt.Errorf("paint: %w", err)
	}
	return nil
}

func (c *Controller) cursorMove(p radial.Point) error {
	if !c.overlay.Visible() {
		return nil
	}
	action := c.state.UpdateCursor(p)
	if action.Activate {
		return c.activate()
	}
	if action.Redraw {
		return c.repaint()
	}
	return nil
}

// activate hides the menu first so the grabs are gone before another
// window takes focus.
func (c *Controller) activate() error {
	app := c.state.HoveredApp()
	if err := c.hide(); err != nil {
		return err
	}
	if app == nil {
		return nil
	}
	if app.Exec == config.SetupExec {
		return c.runSetup()
	}

	res, err := platform.RunOrRaise(c.backend, app.Class, app.Exec, c.launch)
	if err != nil {
		c.logger.Warn("activation failed", "app", app.Name, "error", err)
		return fmt.Errorf("activate %s: %w", app.Name, err)
	}
	if res.Raised {
		c.logger.Info("raised window", "app", app.Name, "window", res.Window.ID, "match", res.Score)
	} else {
		c.logger.Info("launched app", "app", app.Name, "exec", app.Exec)
	}
	return nil
}

func (c *Controller) runSetup() error {
	path := c.configPath
	if path == "" {
		p, err := config.ResolvePath()
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		path = p
	}
	path, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	c.configPath = path
	c.logger.Info("default config written", "path", path)

	if err := c.reload(); err != nil {
		c.logger.Warn("reload after setup failed", "error", err)
	}
	if err := c.launch("xdg-open " + shellquote.Join(path)); err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	return nil
}

func (c *Controller) click(button int) error {
	if !c.overlay.Visible() {
		return nil
	}
	if button == ButtonRight {
		if i, ok := c.state.Hovered(); ok && c.state.Running(i) {
			class := c.state.Slots[i].App.Class
			n, err := platform.CloseClass(c.backend, class)
			c.logger.Info("closed windows", "class", class, "count", n)
			if err != nil {
				_ = c.hide()
				return err
			}
		}
	}
	return c.hide()
}

func (c *Controller) key(name string) error {
	if !c.overlay.Visible() {
		return nil
	}
	if name == "Escape" {
		return c.hide()
	}
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || size != len(name) {
		return nil
	}
	sub, ok := c.state.SubslotForKey(r)
	if !ok {
		return nil
	}
	if err := c.hide(); err != nil {
		return err
	}
	if err := c.backend.Focus(sub.Window.ID); err != nil {
		return fmt.Errorf("focus %s: %w", sub.Window.ID, err)
	}
	return nil
}

func (c *Controller) reload() error {
	cfg, path, err := c.load()
	if err != nil {
		c.logger.Warn("config reload failed, keeping current slots", "path", path, "error", err)
		return fmt.Errorf("reload: %w", err)
	}
	c.configPath = path
	c.apply(cfg)
	if c.onConfig != nil {
		c.onConfig(cfg)
	}
	c.logger.Info("config reloaded", "path", path, "slots", len(radial.Populated(c.state.Slots)))
	return c.repaint()
}

// apply binds the slots and ring dimensions of cfg.
func (c *Controller) apply(cfg *config.Config) {
	c.cfg = cfg
	c.state.SetParams(cfg.Appearance.Params())
	c.state.SetSlots(SlotsFromConfig(cfg, c.resolver))
}

// SlotsFromConfig resolves the directed slots of cfg. The setup slot is
// taken as written.
func SlotsFromConfig(cfg *config.Config, r Resolver) [radial.SlotCount]radial.Slot {
	directed := cfg.Directed()
	specs := make([]radial.SlotSpec, 0, len(directed))
	for _, s := range directed {
		var app radial.App
		if s.Exec == config.SetupExec {
			app = radial.App{Name: s.App, Class: s.Class, Exec: s.Exec}
		} else {
			app = r.Resolve(strings.TrimSpace(s.App), s.Class, s.Exec)
		}
		if app.Name == "" {
			app.Name = app.Exec
		}
		specs = append(specs, radial.SlotSpec{Direction: s.Direction, App: app})
	}
	return radial.InitSlots(specs)
}

// publish copies the state the IPC server reads.
func (c *Controller) publish() {
	st := ipc.StatusData{
		Visible:      c.overlay.Visible(),
		Phase:        c.state.Phase().String(),
		Backend:      c.backend.Name(),
		ConfigPath:   c.configPath,
		Slots:        make([]string, radial.SlotCount),
		SubslotCount: len(c.state.Layout.SubSlots),
		ScaleFactor:  c.state.ScaleFactor,
	}
	if i, ok := c.state.Hovered(); ok {
		st.Hovered = &i
	}
	for i, s := range c.state.Slots {
		if s.App != nil {
			st.Slots[i] = s.App.Name
		}
	}
	sc := render.BuildScene(c.state)

	c.mu.Lock()
	c.status = st
	c.scene = sc
	c.mu.Unlock()
}
