package config

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if err := SetupConfig().Validate(); err != nil {
		t.Fatalf("expected setup config to validate, got %v", err)
	}
}

func TestEmbeddedDefaultParses(t *testing.T) {
	cfg, err := Parse(DefaultYAML(), FormatYAML, "default_config.yaml")
	if err != nil {
		t.Fatalf("parse embedded default: %v", err)
	}
	if len(cfg.Slots) != 4 {
		t.Fatalf("expected 4 default slots, got %d", len(cfg.Slots))
	}
	if cfg.Slots[0].Direction == nil || *cfg.Slots[0].Direction != radial.North {
		t.Fatalf("expected first slot to face north, got %+v", cfg.Slots[0].Direction)
	}
	if cfg.Appearance != DefaultConfig().Appearance {
		t.Fatalf("embedded appearance %+v differs from defaults %+v", cfg.Appearance, DefaultConfig().Appearance)
	}
	if cfg.Theme != DefaultConfig().Theme {
		t.Fatalf("embedded theme %+v differs from defaults %+v", cfg.Theme, DefaultConfig().Theme)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != platform.BackendAuto || cfg.Appearance.OuterRadius != 128 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromPath_YAMLDirectionAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"slots:",
		"  - direction: N",
		"    app: firefox",
		"  - direction: NorthEast",
		"    app: kitty",
		"    exec: kitty --single-instance",
		"  - direction: 7",
		"    app: code",
		"  - app: undirected",
		"",
	}, "\n"))

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []radial.Direction{radial.North, radial.NorthEast, radial.NorthWest}
	for i, d := range want {
		if cfg.Slots[i].Direction == nil || *cfg.Slots[i].Direction != d {
			t.Fatalf("slot %d direction = %v, want %s", i, cfg.Slots[i].Direction, d)
		}
	}
	if cfg.Slots[3].Direction != nil {
		t.Fatalf("expected undirected slot, got %v", *cfg.Slots[3].Direction)
	}
	if got := len(cfg.Directed()); got != 3 {
		t.Fatalf("Directed() = %d entries, want 3", got)
	}
	if cfg.Slots[1].Exec != "kitty --single-instance" {
		t.Fatalf("exec = %q", cfg.Slots[1].Exec)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, strings.Join([]string{
		`log_level = "debug"`,
		``,
		`[[slots]]`,
		`direction = "sw"`,
		`app = "firefox"`,
		`class = "Navigator"`,
		``,
		`[appearance]`,
		`outer_radius = 140.0`,
		``,
	}, "\n"))

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
	if len(cfg.Slots) != 1 || cfg.Slots[0].Direction == nil || *cfg.Slots[0].Direction != radial.SouthWest {
		t.Fatalf("unexpected slots %+v", cfg.Slots)
	}
	if cfg.Appearance.OuterRadius != 140 || cfg.Appearance.InnerRadius != 48 {
		t.Fatalf("appearance = %+v", cfg.Appearance)
	}
}

func TestLoadFromPath_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	writeFile(t, yamlPath, "colour: red\n")
	if _, err := LoadFromPath(yamlPath); err == nil {
		t.Fatal("expected unknown yaml field to fail")
	}

	tomlPath := filepath.Join(dir, "config.toml")
	writeFile(t, tomlPath, "colour = \"red\"\n")
	_, err := LoadFromPath(tomlPath)
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("expected unknown toml field error, got %v", err)
	}
}

func TestLoadFromPath_BadDirection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "slots:\n  - direction: up\n    app: x\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected invalid direction to fail")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"backend", func(c *Config) { c.Backend = "wayland" }, "backend"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"inner >= outer", func(c *Config) { c.Appearance.InnerRadius = 200 }, "appearance.inner_radius"},
		{"zero slot radius", func(c *Config) { c.Appearance.SlotRadius = 0 }, "appearance.slot_radius"},
		{"icon size", func(c *Config) { c.Appearance.IconSize = 0 }, "appearance.icon_size"},
		{"duplicate keys", func(c *Config) { c.Appearance.SubslotKeys = "asdA" }, "appearance.subslot_keys"},
		{"bad color", func(c *Config) { c.Theme.Hovered = "#zzz" }, "theme.hovered"},
		{"empty slot", func(c *Config) { c.Slots = []SlotConfig{{}} }, "slots[0]"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tt.name, err)
		}
		if verr.Path != tt.path {
			t.Fatalf("%s: path = %q, want %q", tt.name, verr.Path, tt.path)
		}
	}
}

func TestValidate_AcceptsEveryPlatformBackend(t *testing.T) {
	for _, name := range []string{platform.BackendAuto, platform.BackendX11, platform.BackendHyprland} {
		cfg := DefaultConfig()
		cfg.Backend = name
		if err := cfg.Validate(); err != nil {
			t.Fatalf("backend %q: %v", name, err)
		}
		if _, err := platform.Detect(cfg.Backend, func(string) string { return "" }); err != nil {
			t.Fatalf("backend %q not detectable: %v", name, err)
		}
	}
}

func TestLoadOrSetup_MissingFileGivesSetupSlot(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "halo", "config.yaml"))

	cfg, _, err := LoadOrSetup()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if len(cfg.Slots) != 1 || cfg.Slots[0].Exec != SetupExec {
		t.Fatalf("expected setup slot, got %+v", cfg.Slots)
	}
	if *cfg.Slots[0].Direction != radial.North {
		t.Fatalf("setup slot direction = %s", *cfg.Slots[0].Direction)
	}
}

func TestLoadOrSetup_BrokenFileGivesSetupSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "slots: [\n")
	t.Setenv(EnvConfigPath, path)

	cfg, got, err := LoadOrSetup()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got != path || cfg.Slots[0].Exec != SetupExec {
		t.Fatalf("path = %q slots = %+v", got, cfg.Slots)
	}
}

func TestResolvePath_FallsBackToTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigPath, filepath.Join(dir, "config.yaml"))

	got, err := ResolvePath()
	if err != nil || got != filepath.Join(dir, "config.yaml") {
		t.Fatalf("ResolvePath() = %q, %v", got, err)
	}

	writeFile(t, filepath.Join(dir, "config.toml"), "")
	got, err = ResolvePath()
	if err != nil || got != filepath.Join(dir, "config.toml") {
		t.Fatalf("ResolvePath() = %q, %v, want toml", got, err)
	}
}

func TestWriteDefault_DoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if _, err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("written default does not load: %v", err)
	}

	writeFile(t, path, "log_level: warn\n")
	if _, err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault second call: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "log_level: warn\n" {
		t.Fatalf("existing config overwritten: %q", data)
	}
}

func TestWriteDefault_TOMLLoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if _, err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load written toml: %v", err)
	}
	if cfg.Appearance != DefaultConfig().Appearance {
		t.Fatalf("appearance = %+v", cfg.Appearance)
	}
}

func TestSave_RoundTripsSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	east := radial.East
	cfg.Slots = []SlotConfig{{Direction: &east, App: "kitty"}}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(back.Slots) != 1 || *back.Slots[0].Direction != radial.East || back.Slots[0].App != "kitty" {
		t.Fatalf("slots = %+v", back.Slots)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 0xff}},
		{"#10203040", color.NRGBA{0x10, 0x20, 0x30, 0x40}},
		{"abcdef", color.NRGBA{0xab, 0xcd, 0xef, 0xff}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if back, _ := ParseColor(FormatColor(got)); back != got {
			t.Fatalf("FormatColor round trip %v -> %v", got, back)
		}
	}
	for _, bad := range []string{"", "#12", "#1234567", "#gggggg"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) expected error", bad)
		}
	}
}

func TestAppearanceParams(t *testing.T) {
	a := DefaultConfig().Appearance
	a.SubslotKeys = "jk"
	a.OuterRadius = 150
	p := a.Params()
	if p.OuterRadius != 150 || string(p.SubslotKeys) != "jk" || p.MaxScale != 2.5 {
		t.Fatalf("params = %+v", p)
	}
}

func TestWatch_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := Watch(ctx, path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, filepath.Join(dir, "other.txt"), "x")
	writeFile(t, path, "log_level: debug\n")

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			// A second coalesced signal is allowed; the channel must still close.
			<-ch
		}
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
