package desktop

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

// iconSizes are searched largest first; scalable SVGs win over bitmaps.
var iconSizes = []string{"scalable", "512x512", "256x256", "192x192", "128x128", "96x96", "64x64", "48x48", "32x32"}

var iconExts = []string{".svg", ".png"}

// IconFinder resolves freedesktop icon names to files.
type IconFinder struct {
	Roots  []string // icon theme roots, e.g. /usr/share/icons
	Themes []string // searched in order; hicolor is always appended
	Extra  []string // flat directories such as /usr/share/pixmaps

	mu    sync.Mutex
	cache map[string]string
}

// DefaultIconFinder searches the XDG data directories and ~/.icons.
func DefaultIconFinder(theme string) *IconFinder {
	var roots, extra []string
	if xdg.Home != "" {
		roots = append(roots, filepath.Join(xdg.Home, ".icons"))
	}
	for _, dir := range append([]string{xdg.DataHome}, xdg.DataDirs...) {
		if dir == "" {
			continue
		}
		roots = append(roots, filepath.Join(dir, "icons"))
		extra = append(extra, filepath.Join(dir, "pixmaps"))
	}

	var themes []string
	if theme != "" {
		themes = append(themes, theme)
	}
	return &IconFinder{Roots: roots, Themes: themes, Extra: extra}
}

// Find returns the icon file for name, or "" when none exists. Absolute
// paths are returned as they are if the file exists.
func (f *IconFinder) Find(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		if fileExists(name) {
			return name
		}
		return ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if path, ok := f.cache[name]; ok {
		return path
	}
	path := f.search(name)
	if f.cache == nil {
		f.cache = make(map[string]string)
	}
	f.cache[name] = path
	return path
}

func (f *IconFinder) search(name string) string {
	themes := append(append([]string(nil), f.Themes...), "hicolor")
	for _, theme := range themes {
		for _, root := range f.Roots {
			for _, size := range iconSizes {
				for _, ext := range iconExts {
					p := filepath.Join(root, theme, size, "apps", name+ext)
					if fileExists(p) {
						return p
					}
				}
			}
		}
	}
	for _, dir := range f.Extra {
		for _, ext := range iconExts {
			p := filepath.Join(dir, name+ext)
			if fileExists(p) {
				return p
			}
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
