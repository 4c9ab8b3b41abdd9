package desktop

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	xdgdesktop "github.com/rkoesters/xdg/desktop"
)

// Entry is an installed application described by a .desktop file.
type Entry struct {
	ID       string `json:"id"`   // file name without .desktop
	Name     string `json:"name"` // display name
	Exec     string `json:"exec"` // launch command with field codes removed
	IconName string `json:"icon_name,omitempty"`
	Icon     string `json:"icon,omitempty"` // resolved icon file
	Class    string `json:"class"`          // StartupWMClass or ID
	Path     string `json:"path"`
}

// ParseFile reads a desktop entry from path. ok is false for entries that
// are not launchable applications or are hidden from menus.
func ParseFile(path string) (Entry, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, false, err
	}
	defer f.Close()

	e, ok, err := Parse(f, strings.TrimSuffix(filepath.Base(path), ".desktop"))
	if err != nil {
		return Entry{}, false, fmt.Errorf("%s: %w", path, err)
	}
	e.Path = path
	return e, ok, nil
}

// Parse reads the [Desktop Entry] group of a desktop file. Files without a
// Type or Name are skipped rather than reported.
func Parse(r io.Reader, id string) (Entry, bool, error) {
	de, err := xdgdesktop.New(r)
	if err != nil {
		if errors.Is(err, xdgdesktop.ErrMissingType) ||
			errors.Is(err, xdgdesktop.ErrMissingName) ||
			errors.Is(err, xdgdesktop.ErrMissingURL) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	if de.Type != xdgdesktop.Application || de.NoDisplay || de.Hidden {
		return Entry{}, false, nil
	}
	if de.Name == "" || de.Exec == "" {
		return Entry{}, false, nil
	}

	class := de.StartupWMClass
	if class == "" {
		class = id
	}
	return Entry{
		ID:       id,
		Name:     de.Name,
		Exec:     StripFieldCodes(de.Exec),
		IconName: de.Icon,
		Class:    class,
	}, true, nil
}

// StripFieldCodes removes %f, %U and similar placeholders from an Exec
// line. Lines that do not split as shell words are returned unchanged.
func StripFieldCodes(exec string) string {
	args, err := shellquote.Split(exec)
	if err != nil {
		return exec
	}
	kept := args[:0]
	for _, a := range args {
		if strings.HasPrefix(a, "%") {
			continue
		}
		kept = append(kept, a)
	}
	return shellquote.Join(kept...)
}
