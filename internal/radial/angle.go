package radial

import "math"

// fullTurn is one revolution in radians.
const fullTurn = 2 * math.Pi

// Point is a position in overlay-window pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// AngleTo returns the screen-space angle of q as seen from p.
// Screen y grows downwards, so -pi/2 points up.
func (p Point) AngleTo(q Point) float64 {
	return math.Atan2(q.Y-p.Y, q.X-p.X)
}

// Polar returns the point at distance r along angle a from p.
func (p Point) Polar(a, r float64) Point {
	return Point{X: p.X + r*math.Cos(a), Y: p.Y + r*math.Sin(a)}
}

// Normalize maps any angle into (-pi, pi].
func Normalize(a float64) float64 {
	a = math.Mod(a+math.Pi, fullTurn)
	if a <= 0 {
		a += fullTurn
	}
	return a - math.Pi
}

// CircularDistance returns the shortest unsigned angular distance between a
// and b, in [0, pi].
func CircularDistance(a, b float64) float64 {
	return math.Abs(Normalize(math.Abs(a - b)))
}

// Segment is a half-open arc [Start, End) measured counter-clockwise.
// Segments never wrap across +-pi.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FullCircle is the single segment covering every angle.
func FullCircle() Segment {
	return Segment{Start: -math.Pi, End: math.Pi}
}

// Len returns the angular length of the segment.
func (s Segment) Len() float64 {
	return s.End - s.Start
}

// Contains reports whether a falls inside [Start, End).
func (s Segment) Contains(a float64) bool {
	return a >= s.Start && a < s.End
}

// Subtract removes block from s and returns what is left: zero, one or two
// segments in ascending order.
func (s Segment) Subtract(block Segment) []Segment {
	if block.End <= s.Start || block.Start >= s.End || block.Len() <= 0 {
		return []Segment{s}
	}

	var out []Segment
	if block.Start > s.Start {
		out = append(out, Segment{Start: s.Start, End: block.Start})
	}
	if block.End < s.End {
		out = append(out, Segment{Start: block.End, End: s.End})
	}
	return out
}

// splitBlock builds the blocked arc centred on center with the given half
// width. An arc that crosses +-pi comes back as two non-wrapping pieces.
func splitBlock(center, half float64) []Segment {
	if half <= 0 {
		return nil
	}
	if half >= math.Pi {
		return []Segment{FullCircle()}
	}

	start, end := center-half, center+half
	switch {
	case start < -math.Pi:
		return []Segment{
			{Start: -math.Pi, End: end},
			{Start: start + fullTurn, End: math.Pi},
		}
	case end > math.Pi:
		return []Segment{
			{Start: start, End: math.Pi},
			{Start: -math.Pi, End: end - fullTurn},
		}
	default:
		return []Segment{{Start: start, End: end}}
	}
}

// subtractAll removes block from every segment in free.
func subtractAll(free []Segment, block Segment) []Segment {
	out := make([]Segment, 0, len(free)+1)
	for _, seg := range free {
		out = append(out, seg.Subtract(block)...)
	}
	return out
}

// TotalLen sums the lengths of segs.
func TotalLen(segs []Segment) float64 {
	total := 0.0
	for _, s := range segs {
		total += s.Len()
	}
	return total
}
