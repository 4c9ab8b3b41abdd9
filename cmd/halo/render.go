package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/daemon"
	"github.com/1broseidon/halo/internal/desktop"
	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/render"
)

// preview describes an offline rendering of the menu.
type preview struct {
	height  float64
	hover   string
	windows []string
}

// buildPreview lays out cfg as if the menu had been opened on a monitor of
// the given height with one window per class in windows. The ring center
// sits in the middle of the returned scene.
func buildPreview(cfg *config.Config, r daemon.Resolver, pv preview) (render.Scene, error) {
	p := cfg.Appearance.Params()
	state := radial.NewState(daemon.SlotsFromConfig(cfg, r), p)

	var windows []radial.Window
	for i, class := range pv.windows {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		windows = append(windows, radial.Window{
			ID:    fmt.Sprintf("preview-%d", i),
			Class: class,
			Title: class,
			Icon:  r.Resolve(class, "", "").Icon,
		})
	}

	sf := p.ScaleFactor(pv.height)
	extent := p.ExtentRadius(sf)
	center := radial.Point{X: extent, Y: extent}
	state.Refresh(center, windows, pv.height)

	if pv.hover != "" {
		d, err := radial.ParseDirection(pv.hover)
		if err != nil {
			return render.Scene{}, err
		}
		mid := (p.InnerRadius + p.OuterRadius) / 2 * sf
		state.UpdateCursor(center.Polar(d.Angle(), mid))
	}
	return render.BuildScene(state), nil
}

func runRender(args []string) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	out := fs.String("o", "", "Output PNG file (required)")
	path := fs.String("path", "", "Config file path (default: ~/.config/halo/config.yaml)")
	height := fs.Float64("height", 1440, "Monitor height in pixels")
	hover := fs.String("hover", "", "Direction to draw as hovered, e.g. n or SouthWest")
	windows := fs.String("windows", "", "Comma-separated window classes shown as open")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: halo render -o FILE.png [--path PATH] [--height N] [--hover DIR] [--windows a,b]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Render the menu offline, without a display server.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "render requires -o")
		fs.Usage()
		return 2
	}
	if *height <= 0 {
		fmt.Fprintln(os.Stderr, "--height must be > 0")
		return 2
	}

	var (
		cfg *config.Config
		err error
	)
	if *path != "" {
		cfg, err = config.LoadFromPath(*path)
	} else {
		cfg, _, err = config.LoadOrSetup()
		if err != nil {
			printWarning(os.Stderr, "%v; rendering the setup slot", err)
			err = nil
		}
	}
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}

	registry := desktop.NewRegistry(desktop.ApplicationDirs(), desktop.DefaultIconFinder(""), nil)
	if err := registry.Refresh(); err != nil {
		printWarning(os.Stderr, "failed to scan desktop entries: %v", err)
	}

	var classes []string
	if *windows != "" {
		classes = strings.Split(*windows, ",")
	}
	sc, err := buildPreview(cfg, registry, preview{height: *height, hover: *hover, windows: classes})
	if err != nil {
		printError(os.Stderr, err)
		return 2
	}

	pal, err := cfg.Theme.Palette()
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	renderer, err := render.NewRenderer(render.Theme(pal), render.NewIconCache(cfg.Appearance.IconSize))
	if err != nil {
		printError(os.Stderr, err)
		return 1
	}
	painter := &render.PNGPainter{Renderer: renderer, Path: *out}
	if err := painter.Paint(sc); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	printSuccess("rendered %s", *out)
	return 0
}
