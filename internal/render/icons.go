package render

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// InactiveAlpha is the opacity of icons of idle, unhovered slots.
const InactiveAlpha = 0.6

// DefaultIconSize is the edge of the square icons are decoded into.
const DefaultIconSize = 256

type iconKey struct {
	path   string
	edge   int
	dimmed bool
}

// IconCache decodes each icon file once and keeps the scaled variants it
// has handed out. Failed decodes are cached as misses.
type IconCache struct {
	size int

	mu      sync.Mutex
	decoded map[string]*image.NRGBA
	scaled  map[iconKey]*image.NRGBA
}

// NewIconCache creates a cache decoding icons to fit a size x size square.
func NewIconCache(size int) *IconCache {
	if size <= 0 {
		size = DefaultIconSize
	}
	return &IconCache{
		size:    size,
		decoded: make(map[string]*image.NRGBA),
		scaled:  make(map[iconKey]*image.NRGBA),
	}
}

// Size returns the decode edge length.
func (c *IconCache) Size() int {
	return c.size
}

// Load returns the icon at path fitted into the decode square. ok is false
// when path is empty or cannot be decoded.
func (c *IconCache) Load(path string) (*image.NRGBA, bool) {
	if path == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(path)
}

func (c *IconCache) loadLocked(path string) (*image.NRGBA, bool) {
	if img, ok := c.decoded[path]; ok {
		return img, img != nil
	}
	img, err := decodeIcon(path, c.size)
	if err != nil {
		c.decoded[path] = nil
		return nil, false
	}
	c.decoded[path] = img
	return img, true
}

// Scaled returns the icon resized by scale relative to its decoded size,
// with alpha multiplied by InactiveAlpha when dimmed.
func (c *IconCache) Scaled(path string, scale float64, dimmed bool) (*image.NRGBA, bool) {
	if path == "" || scale <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	src, ok := c.loadLocked(path)
	if !ok {
		return nil, false
	}
	edge := int(float64(c.size)*scale + 0.5)
	if edge < 1 {
		return nil, false
	}
	key := iconKey{path: path, edge: edge, dimmed: dimmed}
	if img, ok := c.scaled[key]; ok {
		return img, true
	}

	b := src.Bounds()
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	img := imaging.Resize(src, max(w, 1), max(h, 1), imaging.Lanczos)
	if dimmed {
		img = withAlpha(img, InactiveAlpha)
	}
	c.scaled[key] = img
	return img, true
}

// Reset drops every cached image, e.g. after the icon theme changed.
func (c *IconCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.decoded)
	clear(c.scaled)
}

func decodeIcon(path string, size int) (*image.NRGBA, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return rasterizeSVG(path, size)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return fitSquare(img, size), nil
}

// fitSquare scales img up or down until its longer edge equals size.
func fitSquare(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, size, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, size, imaging.Lanczos)
}

func rasterizeSVG(path string, size int) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg %s: %w", path, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)

	out := image.NewNRGBA(rgba.Bounds())
	draw.Draw(out, out.Bounds(), rgba, image.Point{}, draw.Src)
	return out, nil
}

// withAlpha returns a copy of img with every alpha scaled by a.
func withAlpha(img *image.NRGBA, a float64) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = uint8(float64(out.Pix[i])*a + 0.5)
	}
	return out
}
