package desktop

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/1broseidon/halo/internal/radial"
)

// ErrNotFound is returned when no desktop entry matches a query.
var ErrNotFound = errors.New("desktop entry not found")

// Registry is a snapshot of the installed applications. It is filled by
// Refresh and safe for concurrent readers.
type Registry struct {
	dirs   []string
	icons  *IconFinder
	logger *slog.Logger

	mu      sync.RWMutex
	entries []Entry
}

// ApplicationDirs returns the XDG application directories, most important
// first.
func ApplicationDirs() []string {
	var dirs []string
	for _, dir := range append([]string{xdg.DataHome}, xdg.DataDirs...) {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}

// NewRegistry creates an empty registry over dirs. Call Refresh to scan.
func NewRegistry(dirs []string, icons *IconFinder, logger *slog.Logger) *Registry {
	if icons == nil {
		icons = &IconFinder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{dirs: dirs, icons: icons, logger: logger}
}

// Refresh rescans every directory. A desktop file id found in an earlier
// directory hides the same id in later ones.
func (r *Registry) Refresh() error {
	files := make(map[string]string)
	for i := len(r.dirs) - 1; i >= 0; i-- {
		items, err := os.ReadDir(r.dirs[i])
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Debug("skipping application dir", "dir", r.dirs[i], "error", err)
			}
			continue
		}
		for _, it := range items {
			if it.IsDir() || !strings.HasSuffix(it.Name(), ".desktop") {
				continue
			}
			files[it.Name()] = filepath.Join(r.dirs[i], it.Name())
		}
	}

	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, ok, err := ParseFile(files[id])
		if err != nil {
			r.logger.Debug("skipping desktop file", "error", err)
			continue
		}
		if !ok {
			continue
		}
		e.Icon = r.icons.Find(e.IconName)
		entries = append(entries, e)
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	r.logger.Debug("desktop entries scanned", "count", len(entries))
	return nil
}

// Entries returns a copy of every known entry, sorted by id.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns the first entry whose name, class or id equals query,
// ignoring case.
func (r *Registry) Find(query string) (Entry, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Entry{}, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if strings.EqualFold(e.Name, q) || strings.EqualFold(e.Class, q) {
			return e, nil
		}
	}
	for _, e := range r.entries {
		if strings.EqualFold(e.ID, q) {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Resolve turns a configured query into an application. Explicit class and
// exec overrides win; without a matching entry the query doubles as name
// and class, and the exec stays empty unless overridden.
func (r *Registry) Resolve(query, class, exec string) radial.App {
	app := radial.App{Name: query, Class: query}

	if e, err := r.Find(query); err == nil {
		app.Name = e.Name
		app.Icon = e.Icon
		app.Class = e.Class
		app.Exec = e.Exec
	} else {
		app.Icon = r.icons.Find(query)
	}

	if class != "" {
		app.Class = class
	}
	if exec != "" {
		app.Exec = exec
	}
	return app
}
