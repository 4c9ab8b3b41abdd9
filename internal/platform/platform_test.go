package platform

import (
	"errors"
	"testing"

	"github.com/1broseidon/halo/internal/radial"
)

type fakeBackend struct {
	windows  []radial.Window
	focused  []string
	closed   []string
	closeErr map[string]error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Windows() ([]radial.Window, error) { return f.windows, nil }

func (f *fakeBackend) ActiveMonitor() (Monitor, error) { return Monitor{}, ErrNoMonitor }

func (f *fakeBackend) CursorPosition() (radial.Point, error) { return radial.Point{}, nil }

func (f *fakeBackend) Focus(id string) error {
	f.focused = append(f.focused, id)
	return nil
}

func (f *fakeBackend) Close(id string) error {
	if err := f.closeErr[id]; err != nil {
		return err
	}
	f.closed = append(f.closed, id)
	return nil
}

func TestScoreClass(t *testing.T) {
	tests := []struct {
		class, want string
		score       MatchScore
	}{
		{"firefox", "Firefox", MatchExact},
		{"org.gnome.Nautilus", "nautilus", MatchComponent},
		{"google-chrome", "chrome", MatchFuzzy},
		{"code", "code-oss", MatchFuzzy},
		{"kitty", "alacritty", MatchNone},
		{"", "kitty", MatchNone},
		{"kitty", "", MatchNone},
	}
	for _, tt := range tests {
		if got := ScoreClass(tt.class, tt.want); got != tt.score {
			t.Fatalf("ScoreClass(%q, %q) = %v, want %v", tt.class, tt.want, got, tt.score)
		}
	}
}

func TestBestMatch_PrefersHigherScoreThenLaterWindow(t *testing.T) {
	windows := []radial.Window{
		{ID: "1", Class: "org.gnome.Nautilus"},
		{ID: "2", Class: "nautilus-preview"},
		{ID: "3", Class: "Nautilus"},
		{ID: "4", Class: "nautilus"},
	}
	w, score, ok := BestMatch(windows, "nautilus")
	if !ok || score != MatchExact || w.ID != "4" {
		t.Fatalf("BestMatch = %+v %v %v, want id 4 exact", w, score, ok)
	}

	if _, _, ok := BestMatch(windows[:0], "nautilus"); ok {
		t.Fatalf("expected no match on empty list")
	}
}

func TestRunOrRaise_FocusesExistingWindow(t *testing.T) {
	b := &fakeBackend{windows: []radial.Window{{ID: "a", Class: "kitty"}}}
	launched := false
	res, err := RunOrRaise(b, "kitty", "kitty", func(string) error {
		launched = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunOrRaise: %v", err)
	}
	if !res.Raised || launched || len(b.focused) != 1 || b.focused[0] != "a" {
		t.Fatalf("expected focus of a, got %+v focused=%v launched=%v", res, b.focused, launched)
	}
}

func TestRunOrRaise_LaunchesWhenMissing(t *testing.T) {
	b := &fakeBackend{windows: []radial.Window{{ID: "a", Class: "firefox"}}}
	var ran string
	res, err := RunOrRaise(b, "kitty", "kitty --single-instance", func(cmd string) error {
		ran = cmd
		return nil
	})
	if err != nil {
		t.Fatalf("RunOrRaise: %v", err)
	}
	if !res.Launched || ran != "kitty --single-instance" || len(b.focused) != 0 {
		t.Fatalf("expected launch, got %+v ran=%q", res, ran)
	}
}

func TestRunOrRaise_NothingToRun(t *testing.T) {
	b := &fakeBackend{}
	if _, err := RunOrRaise(b, "kitty", " ", func(string) error { return nil }); !errors.Is(err, ErrNoCommand) {
		t.Fatalf("expected ErrNoCommand, got %v", err)
	}
}

func TestCloseClass(t *testing.T) {
	boom := errors.New("boom")
	b := &fakeBackend{
		windows: []radial.Window{
			{ID: "1", Class: "Kitty"},
			{ID: "2", Class: "firefox"},
			{ID: "3", Class: "kitty"},
			{ID: "4", Class: "kitty"},
		},
		closeErr: map[string]error{"4": boom},
	}
	n, err := CloseClass(b, "kitty")
	if n != 2 || !errors.Is(err, boom) {
		t.Fatalf("CloseClass = %d, %v", n, err)
	}
	if len(b.closed) != 2 || b.closed[0] != "1" || b.closed[1] != "3" {
		t.Fatalf("closed = %v", b.closed)
	}
	if n, err := CloseClass(b, ""); n != 0 || err != nil {
		t.Fatalf("empty class should be a no-op, got %d %v", n, err)
	}
}

func TestDetect(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	hypr := env(map[string]string{"HYPRLAND_INSTANCE_SIGNATURE": "abc"})
	none := env(nil)

	if got, _ := Detect("auto", hypr); got != BackendHyprland {
		t.Fatalf("auto with signature = %q", got)
	}
	if got, _ := Detect("", none); got != BackendX11 {
		t.Fatalf("auto without signature = %q", got)
	}
	if got, _ := Detect("X11", hypr); got != BackendX11 {
		t.Fatalf("explicit x11 = %q", got)
	}
	if _, err := Detect("wayland", none); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestWindowIDRoundTrip(t *testing.T) {
	id, err := ParseWindowID(FormatWindowID(0x3a00007))
	if err != nil || id != 0x3a00007 {
		t.Fatalf("round trip = %#x, %v", id, err)
	}
	if _, err := ParseWindowID("nope"); err == nil {
		t.Fatalf("expected parse error")
	}
}
