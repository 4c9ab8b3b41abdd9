package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/1broseidon/halo/internal/radial"
)

const (
	iconFill         = 0.75 // share of the disc diameter an icon covers
	slotFontSize     = 12.0
	subslotFontSize  = 10.0
	badgeFontFactor  = 1.8
	badgeShadowShift = 1.0
)

var (
	badgeColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x99}
	shadowColor = color.NRGBA{A: 0x80}
)

// Renderer rasterizes scenes with gg. It is safe for concurrent use.
type Renderer struct {
	icons *IconCache
	font  *truetype.Font

	mu    sync.Mutex
	theme Theme
	faces map[float64]font.Face
}

// NewRenderer creates a renderer drawing with theme. A nil cache gets a
// default one.
func NewRenderer(theme Theme, icons *IconCache) (*Renderer, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if icons == nil {
		icons = NewIconCache(DefaultIconSize)
	}
	return &Renderer{
		icons: icons,
		font:  f,
		theme: theme,
		faces: make(map[float64]font.Face),
	}, nil
}

// SetTheme swaps the colors used by later frames.
func (r *Renderer) SetTheme(t Theme) {
	r.mu.Lock()
	r.theme = t
	r.mu.Unlock()
}

// Icons returns the icon cache in use.
func (r *Renderer) Icons() *IconCache {
	return r.icons
}

// Render draws sc onto a fresh width x height image. Pixels outside the
// extent disc stay transparent.
func (r *Renderer) Render(sc Scene, width, height int) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(width, height)
	t := r.theme

	if sc.Extent > 0 {
		dc.SetColor(t.Background)
		dc.DrawCircle(sc.Center.X, sc.Center.Y, sc.Extent)
		dc.Fill()
	}

	if sc.CenterRadius > 0 {
		dc.SetColor(t.Center)
		dc.DrawCircle(sc.Center.X, sc.Center.Y, sc.CenterRadius)
		dc.Fill()
	}

	for _, it := range sc.Items {
		r.drawItem(dc, t, it)
	}
	return dc.Image().(*image.RGBA)
}

// drawItem paints one disc with its icon or label, and the hotkey badge
// for subslots.
func (r *Renderer) drawItem(dc *gg.Context, t Theme, it Item) {
	g := it.Geometry
	if g.Radius <= 0 {
		return
	}

	dc.SetColor(t.Fill(it.State))
	dc.DrawCircle(g.Center.X, g.Center.Y, g.Radius)
	dc.Fill()

	scale := g.Radius * 2 * iconFill / float64(r.icons.Size())
	if img, ok := r.icons.Scaled(it.Icon, scale, it.Kind == KindSlot && it.Dimmed); ok {
		dc.DrawImageAnchored(img, int(math.Round(g.Center.X)), int(math.Round(g.Center.Y)), 0.5, 0.5)
	} else if it.Label != "" {
		size := slotFontSize * g.Scale
		if it.Kind == KindSubslot {
			size = subslotFontSize * g.Scale
		}
		if size > 0 {
			dc.SetFontFace(r.face(size))
			dc.SetColor(t.Text)
			dc.DrawStringAnchored(it.Label, g.Center.X, g.Center.Y, 0.5, 0.5)
		}
	}

	if it.Kind == KindSubslot && it.Key != 0 {
		r.drawBadge(dc, it.Key, g)
	}
}

func (r *Renderer) drawBadge(dc *gg.Context, key rune, g radial.SlotGeometry) {
	text := string(unicode.ToUpper(key))
	dc.SetFontFace(r.face(g.Radius * badgeFontFactor))

	dc.SetColor(shadowColor)
	dc.DrawStringAnchored(text, g.Center.X+badgeShadowShift, g.Center.Y+badgeShadowShift, 0.5, 0.5)
	dc.SetColor(badgeColor)
	dc.DrawStringAnchored(text, g.Center.X, g.Center.Y, 0.5, 0.5)
}

// face returns a cached font face for size, rounded to half points.
func (r *Renderer) face(size float64) font.Face {
	size = math.Max(math.Round(size*2)/2, 1)
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{Size: size, Hinting: font.HintingFull})
	r.faces[size] = f
	return f
}

// PNGPainter writes every painted scene to a PNG file.
type PNGPainter struct {
	Renderer *Renderer
	Path     string
}

var _ Painter = (*PNGPainter)(nil)

// Paint renders sc into a square image just large enough for its extent.
func (p *PNGPainter) Paint(sc Scene) error {
	if !strings.HasSuffix(strings.ToLower(p.Path), ".png") {
		return fmt.Errorf("%s: output must be a .png file", p.Path)
	}
	edge := int(math.Ceil(sc.Extent * 2))
	if edge <= 0 {
		return fmt.Errorf("scene has no extent")
	}
	img := p.Renderer.Render(sc, edge, edge)

	f, err := os.Create(p.Path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", p.Path, err)
	}
	return f.Close()
}
