package config

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
)

// SetupExec is the launch command of the placeholder slot shown when no
// usable config exists. Activating it writes the default config.
const SetupExec = "HALO_SETUP"

// SlotConfig binds an application to a compass direction.
type SlotConfig struct {
	Direction *radial.Direction `yaml:"direction,omitempty" toml:"direction,omitempty"`
	App       string            `yaml:"app" toml:"app"`                         // name, class or desktop id
	Class     string            `yaml:"class,omitempty" toml:"class,omitempty"` // window class override
	Exec      string            `yaml:"exec,omitempty" toml:"exec,omitempty"`   // launch command override
}

// Appearance holds the ring dimensions at the reference monitor height.
type Appearance struct {
	InnerRadius     float64 `yaml:"inner_radius" toml:"inner_radius"`
	OuterRadius     float64 `yaml:"outer_radius" toml:"outer_radius"`
	MenuRadius      float64 `yaml:"menu_radius" toml:"menu_radius"`
	SlotRadius      float64 `yaml:"slot_radius" toml:"slot_radius"`
	CenterRadius    float64 `yaml:"center_radius" toml:"center_radius"`
	ReferenceHeight float64 `yaml:"reference_height" toml:"reference_height"`
	SubslotKeys     string  `yaml:"subslot_keys" toml:"subslot_keys"`
	IconSize        int     `yaml:"icon_size" toml:"icon_size"`
}

// Theme holds "#rrggbb" or "#rrggbbaa" colors.
type Theme struct {
	Hovered    string `yaml:"hovered" toml:"hovered"`
	Running    string `yaml:"running" toml:"running"`
	Idle       string `yaml:"idle" toml:"idle"`
	Broken     string `yaml:"broken" toml:"broken"`
	Center     string `yaml:"center" toml:"center"`
	Background string `yaml:"background" toml:"background"`
	Text       string `yaml:"text" toml:"text"`
}

// Config holds the application configuration.
type Config struct {
	Hotkey     string       `yaml:"hotkey" toml:"hotkey"`
	Backend    string       `yaml:"backend" toml:"backend"`
	LogLevel   string       `yaml:"log_level" toml:"log_level"`
	Slots      []SlotConfig `yaml:"slots" toml:"slots"`
	Appearance Appearance   `yaml:"appearance" toml:"appearance"`
	Theme      Theme        `yaml:"theme" toml:"theme"`
}

func DefaultConfig() *Config {
	p := radial.DefaultParams()
	return &Config{
		Hotkey:   "",
		Backend:  platform.BackendAuto,
		LogLevel: "info",
		Appearance: Appearance{
			InnerRadius:     p.InnerRadius,
			OuterRadius:     p.OuterRadius,
			MenuRadius:      p.MenuRadius,
			SlotRadius:      p.SlotRadius,
			CenterRadius:    p.CenterRadius,
			ReferenceHeight: p.ReferenceHeight,
			SubslotKeys:     string(p.SubslotKeys),
			IconSize:        256,
		},
		Theme: Theme{
			Hovered:    "#6666cce6",
			Running:    "#404040d9",
			Idle:       "#26262680",
			Broken:     "#cc333380",
			Center:     "#33333326",
			Background: "#1e1e2e",
			Text:       "#ffffff",
		},
	}
}

// SetupConfig is the config used when none could be loaded: a single
// North slot that bootstraps a config file.
func SetupConfig() *Config {
	cfg := DefaultConfig()
	north := radial.North
	cfg.Slots = []SlotConfig{{
		Direction: &north,
		App:       "Setup",
		Class:     "halo-setup",
		Exec:      SetupExec,
	}}
	return cfg
}

// Params converts the appearance section into engine parameters.
func (a Appearance) Params() radial.Params {
	p := radial.DefaultParams()
	p.InnerRadius = a.InnerRadius
	p.OuterRadius = a.OuterRadius
	p.MenuRadius = a.MenuRadius
	p.SlotRadius = a.SlotRadius
	p.CenterRadius = a.CenterRadius
	p.ReferenceHeight = a.ReferenceHeight
	p.SubslotKeys = []rune(a.SubslotKeys)
	return p
}

// Palette is a theme with every color parsed.
type Palette struct {
	Hovered    color.NRGBA
	Running    color.NRGBA
	Idle       color.NRGBA
	Broken     color.NRGBA
	Center     color.NRGBA
	Background color.NRGBA
	Text       color.NRGBA
}

// Palette parses every theme color.
func (t Theme) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		src  string
		dst  *color.NRGBA
	}{
		{"hovered", t.Hovered, &p.Hovered},
		{"running", t.Running, &p.Running},
		{"idle", t.Idle, &p.Idle},
		{"broken", t.Broken, &p.Broken},
		{"center", t.Center, &p.Center},
		{"background", t.Background, &p.Background},
		{"text", t.Text, &p.Text},
	}
	for _, f := range fields {
		c, err := ParseColor(f.src)
		if err != nil {
			return Palette{}, &ValidationError{Path: "theme." + f.name, Err: err}
		}
		*f.dst = c
	}
	return p, nil
}

// ValidationError reports an invalid setting together with its YAML path.
type ValidationError struct {
	Path string
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := e.Path
	if e.File != "" {
		prefix = e.File + ": " + e.Path
	}
	if prefix != "" {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case platform.BackendAuto, platform.BackendX11, platform.BackendHyprland:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: %s, %s, %s",
			platform.BackendAuto, platform.BackendX11, platform.BackendHyprland)}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	for i, slot := range c.Slots {
		path := fmt.Sprintf("slots[%d]", i)
		if strings.TrimSpace(slot.App) == "" && strings.TrimSpace(slot.Exec) == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("slot needs an app or an exec")}
		}
		if slot.Direction != nil && !slot.Direction.Valid() {
			return &ValidationError{Path: path + ".direction", Err: fmt.Errorf("invalid direction %d", int(*slot.Direction))}
		}
	}

	a := c.Appearance
	radii := []struct {
		name string
		v    float64
	}{
		{"inner_radius", a.InnerRadius},
		{"outer_radius", a.OuterRadius},
		{"menu_radius", a.MenuRadius},
		{"slot_radius", a.SlotRadius},
		{"center_radius", a.CenterRadius},
		{"reference_height", a.ReferenceHeight},
	}
	for _, r := range radii {
		if r.v <= 0 {
			return &ValidationError{Path: "appearance." + r.name, Err: fmt.Errorf("%s must be > 0", r.name)}
		}
	}
	if a.InnerRadius >= a.OuterRadius {
		return &ValidationError{Path: "appearance.inner_radius", Err: fmt.Errorf("inner_radius must be smaller than outer_radius")}
	}
	if a.IconSize <= 0 {
		return &ValidationError{Path: "appearance.icon_size", Err: fmt.Errorf("icon_size must be > 0")}
	}
	seen := make(map[rune]bool)
	for _, r := range strings.ToLower(a.SubslotKeys) {
		if seen[r] {
			return &ValidationError{Path: "appearance.subslot_keys", Err: fmt.Errorf("duplicate key %q", r)}
		}
		seen[r] = true
	}

	if _, err := c.Theme.Palette(); err != nil {
		return err
	}
	return nil
}

// Directed returns the slots that carry a direction, in file order.
func (c *Config) Directed() []SlotConfig {
	var out []SlotConfig
	for _, s := range c.Slots {
		if s.Direction != nil {
			out = append(out, s)
		}
	}
	return out
}
