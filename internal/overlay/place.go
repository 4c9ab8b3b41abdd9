package overlay

import (
	"math"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/halo/internal/platform"
	"github.com/1broseidon/halo/internal/radial"
)

// Placement is where the overlay window goes and where the ring center
// lies inside it.
type Placement struct {
	X, Y   int          // window origin in global coordinates
	Size   int          // edge of the square window
	Center radial.Point // ring center in window coordinates
}

// Place centers a square window of radius extent on cursor, shifted so it
// stays on monitor when the monitor is large enough. The ring center keeps
// tracking the cursor, so near an edge it sits off the window center.
func Place(cursor radial.Point, monitor platform.Rect, extent float64) Placement {
	size := int(math.Ceil(extent * 2))
	if size < 1 {
		size = 1
	}
	cx := int(math.Round(cursor.X))
	cy := int(math.Round(cursor.Y))
	x := clamp(cx-size/2, monitor.X, monitor.X+monitor.Width-size)
	y := clamp(cy-size/2, monitor.Y, monitor.Y+monitor.Height-size)
	return Placement{
		X:      x,
		Y:      y,
		Size:   size,
		Center: radial.Point{X: cursor.X - float64(x), Y: cursor.Y - float64(y)},
	}
}

// clamp keeps v in [lo, hi]; when the range is empty lo wins.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// DiscRects approximates a disc of the given radius around center with one
// rectangle per pixel row, clipped to a size x size window. The rows are
// in ascending y order.
func DiscRects(center radial.Point, radius float64, size int) []xproto.Rectangle {
	if radius <= 0 || size <= 0 {
		return nil
	}
	rects := make([]xproto.Rectangle, 0, size)
	for y := 0; y < size; y++ {
		dy := float64(y) + 0.5 - center.Y
		if math.Abs(dy) > radius {
			continue
		}
		half := math.Sqrt(radius*radius - dy*dy)
		x0 := max(int(math.Floor(center.X-half)), 0)
		x1 := min(int(math.Ceil(center.X+half)), size)
		if x1 <= x0 {
			continue
		}
		rects = append(rects, xproto.Rectangle{
			X:      int16(x0),
			Y:      int16(y),
			Width:  uint16(x1 - x0),
			Height: 1,
		})
	}
	return rects
}
