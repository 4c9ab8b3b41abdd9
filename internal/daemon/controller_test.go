package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/desktop"
	"github.com/1broseidon/halo/internal/overlay"
	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/render"
)

type fakeBackend struct {
	mu      sync.Mutex
	windows []radial.Window
	monitor platform.Monitor
	cursor  radial.Point
	focused []string
	closed  []string
}

func (b *fakeBackend) Name() string {
	return "fake"
}

func (b *fakeBackend) Windows() ([]radial.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]radial.Window(nil), b.windows...), nil
}

func (b *fakeBackend) ActiveMonitor() (platform.Monitor, error) {
	return b.monitor, nil
}

func (b *fakeBackend) CursorPosition() (radial.Point, error) {
	return b.cursor, nil
}

func (b *fakeBackend) Focus(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = append(b.focused, id)
	return nil
}

func (b *fakeBackend) Close(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, id)
	return nil
}

type fakeOverlay struct {
	mu      sync.Mutex
	visible bool
	shown   []overlay.Placement
	extent  float64
	scenes  []render.Scene
	hides   int
}

func (o *fakeOverlay) Show(p overlay.Placement, extent float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = true
	o.shown = append(o.shown, p)
	o.extent = extent
	return nil
}

func (o *fakeOverlay) Hide() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = false
	o.hides++
	return nil
}

func (o *fakeOverlay) Paint(sc render.Scene) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scenes = append(o.scenes, sc)
	return nil
}

func (o *fakeOverlay) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

func (o *fakeOverlay) lastScene() render.Scene {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.scenes) == 0 {
		return render.Scene{}
	}
	return o.scenes[len(o.scenes)-1]
}

// fakeResolver treats every query as an installed app whose class and
// command equal the query unless overridden.
type fakeResolver struct{}

func (fakeResolver) Resolve(query, class, exec string) radial.App {
	app := radial.App{Name: query, Class: query, Exec: query}
	if class != "" {
		app.Class = class
	}
	if exec != "" {
		app.Exec = exec
	}
	return app
}

type launchRecorder struct {
	mu       sync.Mutex
	commands []string
}

func (l *launchRecorder) launch(cmd string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = append(l.commands, cmd)
	return nil
}

func (l *launchRecorder) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.commands...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func slotConfig(t *testing.T, entries ...string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	for i := 0; i+1 < len(entries); i += 2 {
		d, err := radial.ParseDirection(entries[i])
		if err != nil {
			t.Fatalf("ParseDirection: %v", err)
		}
		cfg.Slots = append(cfg.Slots, config.SlotConfig{Direction: &d, App: entries[i+1]})
	}
	return cfg
}

type harness struct {
	ctrl     *Controller
	backend  *fakeBackend
	overlay  *fakeOverlay
	launcher *launchRecorder
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		backend: &fakeBackend{
			monitor: platform.Monitor{Name: "DP-1", Bounds: platform.Rect{Width: 1920, Height: 1440}},
			cursor:  radial.Point{X: 500, Y: 500},
		},
		overlay:  &fakeOverlay{},
		launcher: &launchRecorder{},
	}
	opts.Backend = h.backend
	opts.Overlay = h.overlay
	opts.Resolver = fakeResolver{}
	opts.Launch = h.launcher.launch
	opts.Logger = discardLogger()
	h.ctrl = New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.ctrl.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

// ringCenter is where the ring lands for the default harness: a 500px
// window centered on the cursor at (500, 500).
var ringCenter = radial.Point{X: 250, Y: 250}

func TestController_ShowPlacesAndPaints(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox", "e", "kitty")})
	h.backend.windows = []radial.Window{{ID: "0x1", Class: "firefox"}, {ID: "0x2", Class: "mpv"}}

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(h.overlay.shown) != 1 {
		t.Fatalf("overlay shown %d times", len(h.overlay.shown))
	}
	want := overlay.Place(h.backend.cursor, h.backend.monitor.Bounds, 250)
	if got := h.overlay.shown[0]; got != want {
		t.Fatalf("placement = %+v, want %+v", got, want)
	}
	if h.overlay.extent != 250 {
		t.Fatalf("extent = %v, want 250", h.overlay.extent)
	}

	sc := h.overlay.lastScene()
	if sc.Center != ringCenter {
		t.Fatalf("scene center = %+v, want %+v", sc.Center, ringCenter)
	}
	var slots, subslots int
	for _, it := range sc.Items {
		switch it.Kind {
		case render.KindSlot:
			slots++
		case render.KindSubslot:
			subslots++
			if it.Key != 'a' || it.Label != "mpv" {
				t.Fatalf("subslot = %+v, want key a for mpv", it)
			}
		}
	}
	if slots != 2 || subslots != 1 {
		t.Fatalf("scene has %d slots and %d subslots, want 2 and 1", slots, subslots)
	}

	st := h.ctrl.Status()
	if !st.Visible || st.Backend != "fake" || st.SubslotCount != 1 || st.ScaleFactor != 1 {
		t.Fatalf("status = %+v", st)
	}
	if st.Slots[radial.North.Index()] != "firefox" || st.Slots[radial.East.Index()] != "kitty" {
		t.Fatalf("status slots = %q", st.Slots)
	}
	if layout := h.ctrl.Layout(); !layout.Visible || len(layout.Scene.Items) != 3 {
		t.Fatalf("layout = %+v", layout)
	}
}

func TestController_ToggleShowsThenHides(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})

	if err := h.ctrl.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !h.overlay.Visible() {
		t.Fatal("first toggle should show the menu")
	}
	if err := h.ctrl.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if h.overlay.Visible() || h.ctrl.Status().Visible {
		t.Fatal("second toggle should hide the menu")
	}
}

func TestController_ActivationRaisesRunningWindow(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})
	h.backend.windows = []radial.Window{{ID: "0x1", Class: "firefox"}}

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := h.ctrl.CursorMove(ringCenter.Polar(radial.North.Angle(), 200)); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if h.overlay.Visible() {
		t.Fatal("activation should hide the menu")
	}
	if len(h.backend.focused) != 1 || h.backend.focused[0] != "0x1" {
		t.Fatalf("focused = %v, want [0x1]", h.backend.focused)
	}
	if cmds := h.launcher.all(); len(cmds) != 0 {
		t.Fatalf("launched %v, want nothing", cmds)
	}
}

func TestController_ActivationLaunchesWhenNotRunning(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := h.ctrl.CursorMove(ringCenter.Polar(radial.North.Angle(), 200)); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if cmds := h.launcher.all(); len(cmds) != 1 || cmds[0] != "firefox" {
		t.Fatalf("launched %v, want [firefox]", cmds)
	}
}

func TestController_HoverRepaintsWithoutActivating(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox", "s", "kitty")})

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	painted := len(h.overlay.scenes)
	if err := h.ctrl.CursorMove(ringCenter.Polar(radial.South.Angle(), 80)); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if len(h.overlay.scenes) != painted+1 {
		t.Fatalf("hover change should repaint once, got %d new frames", len(h.overlay.scenes)-painted)
	}
	st := h.ctrl.Status()
	if st.Hovered == nil || *st.Hovered != radial.South.Index() || st.Phase != "hovering" {
		t.Fatalf("status = %+v, want south hovered", st)
	}

	if err := h.ctrl.CursorMove(ringCenter.Polar(radial.South.Angle(), 90)); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if len(h.overlay.scenes) != painted+1 {
		t.Fatal("unchanged hover should not repaint")
	}
	if !h.overlay.Visible() || len(h.launcher.all()) != 0 {
		t.Fatal("hovering inside the ring must not activate")
	}
}

func TestController_RightClickClosesHoveredApp(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})
	h.backend.windows = []radial.Window{
		{ID: "0x1", Class: "firefox"},
		{ID: "0x2", Class: "Firefox"},
		{ID: "0x3", Class: "kitty"},
	}

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	p := ringCenter.Polar(radial.North.Angle(), 80)
	if err := h.ctrl.CursorMove(p); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if err := h.ctrl.Click(ButtonRight, p); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if strings.Join(h.backend.closed, ",") != "0x1,0x2" {
		t.Fatalf("closed = %v, want both firefox windows", h.backend.closed)
	}
	if h.overlay.Visible() {
		t.Fatal("click should hide the menu")
	}
}

func TestController_LeftClickOnlyHides(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})
	h.backend.windows = []radial.Window{{ID: "0x1", Class: "firefox"}}

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	p := ringCenter.Polar(radial.North.Angle(), 80)
	if err := h.ctrl.CursorMove(p); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if err := h.ctrl.Click(ButtonLeft, p); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if len(h.backend.closed) != 0 || h.overlay.Visible() {
		t.Fatalf("closed = %v visible = %v", h.backend.closed, h.overlay.Visible())
	}
}

func TestController_SubslotKeyFocusesWindow(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})
	h.backend.windows = []radial.Window{{ID: "0x1", Class: "firefox"}, {ID: "0x9", Class: "mpv"}}

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := h.ctrl.Key("z"); err != nil {
		t.Fatalf("Key: %v", err)
	}
	if !h.overlay.Visible() {
		t.Fatal("unbound key should be ignored")
	}
	if err := h.ctrl.Key("A"); err != nil {
		t.Fatalf("Key: %v", err)
	}
	if len(h.backend.focused) != 1 || h.backend.focused[0] != "0x9" {
		t.Fatalf("focused = %v, want [0x9]", h.backend.focused)
	}
	if h.overlay.Visible() {
		t.Fatal("subslot key should hide the menu")
	}
}

func TestController_EscapeHides(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := h.ctrl.Key("Escape"); err != nil {
		t.Fatalf("Key: %v", err)
	}
	if h.overlay.Visible() {
		t.Fatal("escape should hide the menu")
	}
}

func TestController_InputIgnoredWhileHidden(t *testing.T) {
	h := newHarness(t, Options{Config: slotConfig(t, "n", "firefox")})

	if err := h.ctrl.CursorMove(ringCenter.Polar(radial.North.Angle(), 200)); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}
	if err := h.ctrl.Key("Escape"); err != nil {
		t.Fatalf("Key: %v", err)
	}
	if len(h.launcher.all()) != 0 || h.overlay.hides != 0 {
		t.Fatalf("hidden menu reacted to input: launched %v hides %d", h.launcher.all(), h.overlay.hides)
	}
}

func TestController_ReloadReplacesSlots(t *testing.T) {
	next := slotConfig(t, "w", "code")
	var applied []*config.Config
	h := newHarness(t, Options{
		Config:     slotConfig(t, "n", "firefox"),
		ConfigPath: "/old/config.yaml",
		Load: func() (*config.Config, string, error) {
			return next, "/new/config.yaml", nil
		},
		OnConfig: func(cfg *config.Config) {
			applied = append(applied, cfg)
		},
	})

	if err := h.ctrl.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st := h.ctrl.Status()
	if st.Slots[radial.North.Index()] != "" || st.Slots[radial.West.Index()] != "code" {
		t.Fatalf("slots after reload = %q", st.Slots)
	}
	if st.ConfigPath != "/new/config.yaml" {
		t.Fatalf("config path = %q", st.ConfigPath)
	}
	if len(applied) != 1 || applied[0] != next {
		t.Fatalf("OnConfig calls = %d", len(applied))
	}
}

func TestController_FailedReloadKeepsSlots(t *testing.T) {
	h := newHarness(t, Options{
		Config: slotConfig(t, "n", "firefox"),
		Load: func() (*config.Config, string, error) {
			return config.SetupConfig(), "/broken.yaml", errors.New("yaml: line 3: bad indentation")
		},
	})

	if err := h.ctrl.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if st := h.ctrl.Status(); st.Slots[radial.North.Index()] != "firefox" {
		t.Fatalf("slots = %q, want firefox kept", st.Slots)
	}
}

func TestController_SetupSlotWritesConfigAndOpensIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halo", "config.yaml")
	h := newHarness(t, Options{
		ConfigPath: path,
		Load: func() (*config.Config, string, error) {
			cfg, err := config.LoadFromPath(path)
			return cfg, path, err
		},
	})
	if st := h.ctrl.Status(); st.Slots[radial.North.Index()] != "Setup" {
		t.Fatalf("initial slots = %q, want the setup slot", st.Slots)
	}

	if err := h.ctrl.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := h.ctrl.CursorMove(ringCenter.Polar(radial.North.Angle(), 200)); err != nil {
		t.Fatalf("CursorMove: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	cmds := h.launcher.all()
	if len(cmds) != 1 || !strings.HasPrefix(cmds[0], "xdg-open ") {
		t.Fatalf("launched %v, want xdg-open", cmds)
	}
	if st := h.ctrl.Status(); st.Slots[radial.North.Index()] != "firefox" {
		t.Fatalf("slots after setup = %q, want the default config", st.Slots)
	}
}

func TestController_StoppedRejectsEvents(t *testing.T) {
	c := New(Options{
		Backend:  &fakeBackend{},
		Overlay:  &fakeOverlay{},
		Resolver: fakeResolver{},
		Logger:   discardLogger(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	if err := c.Show(); !errors.Is(err, ErrStopped) {
		t.Fatalf("Show after stop = %v, want ErrStopped", err)
	}
}

type fakeSource struct {
	entries []desktop.Entry
	scans   int
}

func (s *fakeSource) Refresh() error {
	s.scans++
	return nil
}

func (s *fakeSource) Entries() []desktop.Entry {
	return s.entries
}

func TestReconciler_NotifiesOnlyOnChange(t *testing.T) {
	src := &fakeSource{entries: []desktop.Entry{{ID: "firefox", Name: "Firefox", Exec: "firefox"}}}
	changes := 0
	r := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, src, func() { changes++ })

	if r.ReconcileNow() || changes != 0 {
		t.Fatal("unchanged entries should not notify")
	}

	src.entries = append(src.entries, desktop.Entry{ID: "kitty", Name: "kitty", Exec: "kitty"})
	if !r.ReconcileNow() || changes != 1 {
		t.Fatalf("added entry: changes = %d, want 1", changes)
	}
	if r.ReconcileNow() || changes != 1 {
		t.Fatalf("second pass: changes = %d, want 1", changes)
	}

	src.entries[0].Exec = "firefox --private-window"
	if !r.ReconcileNow() || changes != 2 {
		t.Fatalf("edited entry: changes = %d, want 2", changes)
	}
	if src.scans != 4 {
		t.Fatalf("scans = %d, want 4", src.scans)
	}
}
