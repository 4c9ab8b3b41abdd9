package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/1broseidon/halo/internal/radial"
)

// Source tells where an effective value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
)

// Explain returns the effective value at the given YAML-like path and
// whether it differs from the built-in default.
//
// Supported paths include:
//
//	hotkey
//	backend
//	log_level
//	slots
//	slots.<direction>            (n, ne, ..., or a full name)
//	slots.<direction>.app|class|exec
//	appearance
//	appearance.<field>
//	theme
//	theme.<color>
func Explain(cfg *Config, path string) (any, Source, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, "", fmt.Errorf("path is empty")
	}

	value, err := lookupValue(cfg, path)
	if err != nil {
		return nil, "", err
	}
	def, err := lookupValue(DefaultConfig(), path)
	if err != nil || !reflect.DeepEqual(value, def) {
		return value, SourceFile, nil
	}
	return value, SourceDefault, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "hotkey":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.Hotkey, nil
	case "backend":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.Backend, nil
	case "log_level":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.LogLevel, nil
	case "slots":
		return lookupSlot(cfg, parts, path)
	case "appearance":
		if len(parts) == 1 {
			return cfg.Appearance, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return fieldByTag(cfg.Appearance, parts[1], path)
	case "theme":
		if len(parts) == 1 {
			return cfg.Theme, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return fieldByTag(cfg.Theme, parts[1], path)
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}

// lookupSlot resolves slots paths. The last slot bound to a direction wins,
// matching how slots are applied.
func lookupSlot(cfg *Config, parts []string, path string) (any, error) {
	if len(parts) == 1 {
		return cfg.Slots, nil
	}
	d, err := radial.ParseDirection(parts[1])
	if err != nil {
		return nil, fmt.Errorf("unknown path: %s: %w", path, err)
	}
	var (
		slot  SlotConfig
		found bool
	)
	for _, s := range cfg.Directed() {
		if *s.Direction == d {
			slot, found = s, true
		}
	}
	if !found {
		return nil, fmt.Errorf("no slot bound to %s", d)
	}
	if len(parts) == 2 {
		return slot, nil
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	switch parts[2] {
	case "app":
		return slot.App, nil
	case "class":
		return slot.Class, nil
	case "exec":
		return slot.Exec, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}

// fieldByTag returns the field of struct v whose yaml tag is name.
func fieldByTag(v any, name, path string) (any, error) {
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag, _, _ := strings.Cut(rt.Field(i).Tag.Get("yaml"), ",")
		if tag == name {
			return rv.Field(i).Interface(), nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
