package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "HALO_CONFIG"

// DefaultYAML returns the commented default config file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultConfigYAML...)
}

// DefaultConfigPath returns $HALO_CONFIG or $XDG_CONFIG_HOME/halo/config.yaml.
func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return filepath.Join(xdg.ConfigHome, "halo", "config.yaml"), nil
}

// ResolvePath returns the file that Load would read: the YAML path, or a
// config.toml next to it when only that one exists.
func ResolvePath() (string, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if exists, err := pathExists(path); err != nil || exists {
		return path, err
	}
	alt := strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
	if exists, _ := pathExists(alt); exists {
		return alt, nil
	}
	return path, nil
}

// Load reads and validates the config at the standard location.
func Load() (*Config, error) {
	path, err := ResolvePath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path as YAML or, for a .toml extension, TOML. Settings
// missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	return Parse(data, formatFor(path), path)
}

// Format is a config file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func formatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Parse decodes data on top of the defaults and validates the result.
// name only labels errors.
func Parse(data []byte, format Format, name string) (*Config, error) {
	cfg := DefaultConfig()

	var err error
	switch format {
	case FormatTOML:
		err = decodeStrictTOML(data, cfg)
	default:
		err = decodeStrictYAML(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.File = name
		}
		return nil, err
	}
	return cfg, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func decodeStrictTOML(data []byte, out any) error {
	md, err := toml.Decode(string(data), out)
	if err != nil {
		return fmt.Errorf("failed to parse toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown field(s): %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadOrSetup returns the config at the standard location or, when it is
// missing or broken, the setup placeholder. The error explains why the
// placeholder was used and is nil when the file loaded.
func LoadOrSetup() (*Config, string, error) {
	path, err := ResolvePath()
	if err != nil {
		return SetupConfig(), "", err
	}
	exists, err := pathExists(path)
	if err != nil {
		return SetupConfig(), path, err
	}
	if !exists {
		return SetupConfig(), path, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		return SetupConfig(), path, err
	}
	return cfg, path, nil
}

// WriteDefault writes the default config to path unless a file already
// exists there, and returns path.
func WriteDefault(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if exists, err := pathExists(path); err != nil {
		return "", err
	} else if exists {
		return path, nil
	}
	data := defaultConfigYAML
	if formatFor(path) == FormatTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
			return "", fmt.Errorf("failed to encode toml: %w", err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// Save validates c and writes it to path in the format its extension names.
// Comments in an existing file are not preserved.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal(formatFor(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal encodes c in the given format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	if format == FormatTOML {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return buf.Bytes(), nil
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
