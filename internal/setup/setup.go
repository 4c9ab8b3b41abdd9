// Package setup asks for the slot bindings interactively and turns the
// answers into a config.
package setup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
)

// ErrNotInteractive is returned by Run when stdin or stdout is not a
// terminal.
var ErrNotInteractive = errors.New("setup requires an interactive terminal")

// Answers holds the form fields. Apps[i] is the app query for direction i,
// empty when the direction stays unbound.
type Answers struct {
	Hotkey      string
	Backend     string
	SubslotKeys string
	Apps        [radial.SlotCount]string
}

// FromConfig fills the answers from an existing config. Slots without a
// direction are not represented.
func FromConfig(cfg *config.Config) Answers {
	a := Answers{
		Hotkey:      cfg.Hotkey,
		Backend:     cfg.Backend,
		SubslotKeys: cfg.Appearance.SubslotKeys,
	}
	for _, s := range cfg.Directed() {
		if s.Exec == config.SetupExec {
			continue
		}
		a.Apps[s.Direction.Index()] = s.App
	}
	return a
}

// Apply writes the answers into cfg. Directed slots are rebuilt in compass
// order; class and exec overrides of apps that did not change are kept.
func (a Answers) Apply(cfg *config.Config) error {
	cfg.Hotkey = strings.TrimSpace(a.Hotkey)
	if a.Backend != "" {
		cfg.Backend = a.Backend
	}
	if keys := strings.TrimSpace(a.SubslotKeys); keys != "" {
		cfg.Appearance.SubslotKeys = keys
	}

	previous := make(map[radial.Direction]config.SlotConfig)
	var undirected []config.SlotConfig
	for _, s := range cfg.Slots {
		if s.Direction == nil {
			undirected = append(undirected, s)
			continue
		}
		previous[*s.Direction] = s
	}

	slots := make([]config.SlotConfig, 0, radial.SlotCount+len(undirected))
	for i, app := range a.Apps {
		app = strings.TrimSpace(app)
		if app == "" {
			continue
		}
		d := radial.DirectionFromIndex(i)
		slot := config.SlotConfig{Direction: &d, App: app}
		if old, ok := previous[d]; ok && old.App == app && old.Exec != config.SetupExec {
			slot.Class = old.Class
			slot.Exec = old.Exec
		}
		slots = append(slots, slot)
	}
	cfg.Slots = append(slots, undirected...)
	return cfg.Validate()
}

// Form builds the setup form over a. apps feeds the input suggestions.
func Form(a *Answers, apps []string) *huh.Form {
	var appFields []huh.Field
	for i := range a.Apps {
		d := radial.DirectionFromIndex(i)
		appFields = append(appFields, huh.NewInput().
			Key("slot_"+d.Abbrev()).
			Title(d.String()).
			Placeholder("unbound").
			Suggestions(apps).
			Value(&a.Apps[i]))
	}

	backendOpts := []huh.Option[string]{
		huh.NewOption("auto", platform.BackendAuto),
		huh.NewOption("x11", platform.BackendX11),
		huh.NewOption("hyprland", platform.BackendHyprland),
	}

	return huh.NewForm(
		huh.NewGroup(appFields...).
			Title("Slots").
			Description("Application name, desktop id or window class per direction"),
		huh.NewGroup(
			huh.NewInput().
				Key("hotkey").
				Title("Hotkey").
				Description("X11 keybinding that toggles the menu, e.g. Mod4-space").
				Value(&a.Hotkey),

			huh.NewSelect[string]().
				Key("backend").
				Title("Backend").
				Description("Window system to query").
				Options(backendOpts...).
				Value(&a.Backend),

			huh.NewInput().
				Key("subslot_keys").
				Title("Subslot Keys").
				Description("Keys assigned to unbound windows, in order").
				Validate(validateKeys).
				Value(&a.SubslotKeys),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func validateKeys(s string) error {
	seen := make(map[rune]bool)
	for _, r := range strings.ToLower(s) {
		if seen[r] {
			return fmt.Errorf("duplicate key %q", r)
		}
		seen[r] = true
	}
	return nil
}

// Run shows the form seeded from cfg and returns the updated config. cfg
// itself is not modified.
func Run(cfg *config.Config, apps []string) (*config.Config, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, ErrNotInteractive
	}

	answers := FromConfig(cfg)
	if err := Form(&answers, apps).Run(); err != nil {
		return nil, err
	}

	out := *cfg
	out.Slots = append([]config.SlotConfig(nil), cfg.Slots...)
	if err := answers.Apply(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
