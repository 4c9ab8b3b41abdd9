package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/halo/internal/config"
	"github.com/1broseidon/halo/internal/daemon"
	"github.com/1broseidon/halo/internal/radial"
	"github.com/1broseidon/halo/internal/render"
)

type stubResolver struct{}

func (stubResolver) Resolve(query, class, exec string) radial.App {
	app := radial.App{Name: query, Class: query, Exec: query}
	if class != "" {
		app.Class = class
	}
	if exec != "" {
		app.Exec = exec
	}
	return app
}

func previewConfig() *config.Config {
	cfg := config.DefaultConfig()
	north, south := radial.North, radial.South
	cfg.Slots = []config.SlotConfig{
		{Direction: &north, App: "firefox"},
		{Direction: &south, App: "kitty"},
	}
	return cfg
}

func TestBuildPreview_CentersRingAndAddsWindows(t *testing.T) {
	sc, err := buildPreview(previewConfig(), stubResolver{}, preview{
		height:  720,
		windows: []string{"firefox", " mpv ", ""},
	})
	if err != nil {
		t.Fatalf("buildPreview: %v", err)
	}
	if sc.Extent != 125 {
		t.Fatalf("extent = %v, want 125 at half scale", sc.Extent)
	}
	if sc.Center != (radial.Point{X: 125, Y: 125}) {
		t.Fatalf("center = %+v", sc.Center)
	}

	var running, subslots int
	for _, it := range sc.Items {
		if it.Kind == render.KindSubslot {
			subslots++
			if it.Label != "mpv" {
				t.Fatalf("subslot label = %q, want mpv", it.Label)
			}
		} else if it.State == render.StateRunning {
			running++
		}
	}
	if running != 1 || subslots != 1 {
		t.Fatalf("running = %d subslots = %d, want 1 and 1", running, subslots)
	}
}

func TestBuildPreview_Hover(t *testing.T) {
	sc, err := buildPreview(previewConfig(), stubResolver{}, preview{height: 1440, hover: "s"})
	if err != nil {
		t.Fatalf("buildPreview: %v", err)
	}
	for _, it := range sc.Items {
		hovered := it.State == render.StateHovered
		if hovered != (it.Index == radial.South.Index()) {
			t.Fatalf("item %d state = %s", it.Index, it.State)
		}
	}

	if _, err := buildPreview(previewConfig(), stubResolver{}, preview{height: 1440, hover: "up"}); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestBuildPreview_PaintsPNG(t *testing.T) {
	sc, err := buildPreview(previewConfig(), stubResolver{}, preview{height: 1440})
	if err != nil {
		t.Fatalf("buildPreview: %v", err)
	}
	r, err := render.NewRenderer(render.DefaultTheme(), nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out := filepath.Join(t.TempDir(), "menu.png")
	if err := (&render.PNGPainter{Renderer: r, Path: out}).Paint(sc); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    log.Level
	}{
		{"info", false, log.InfoLevel},
		{" WARN ", false, log.WarnLevel},
		{"error", false, log.ErrorLevel},
		{"bogus", false, log.InfoLevel},
		{"error", true, log.DebugLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.name, tt.verbose); got != tt.want {
			t.Fatalf("parseLevel(%q, %v) = %v, want %v", tt.name, tt.verbose, got, tt.want)
		}
	}
}

func TestReportInput_LogsFailuresButNotShutdown(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	reportInput(logger, "motion", nil)
	reportInput(logger, "motion", daemon.ErrStopped)
	reportInput(logger, "motion", fmt.Errorf("post: %w", daemon.ErrStopped))
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}

	reportInput(logger, "motion", errors.New("paint failed"))
	out := buf.String()
	if !strings.Contains(out, "motion failed") || !strings.Contains(out, "paint failed") {
		t.Fatalf("log output = %q, want the motion failure", out)
	}
}
