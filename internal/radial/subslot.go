package radial

import (
	"math"
	"sort"
)

// Apportion splits k units across segs in proportion to their length using
// the largest-remainder method. Counts always sum to k; ties go to the
// earlier segment.
func Apportion(segs []Segment, k int) []int {
	counts := make([]int, len(segs))
	if k <= 0 || len(segs) == 0 {
		return counts
	}

	total := TotalLen(segs)
	if total <= 0 {
		counts[0] = k
		return counts
	}

	type share struct {
		idx       int
		remainder float64
	}
	shares := make([]share, len(segs))
	assigned := 0
	for i, s := range segs {
		ideal := s.Len() / total * float64(k)
		base := int(math.Floor(ideal))
		counts[i] = base
		assigned += base
		shares[i] = share{idx: i, remainder: ideal - float64(base)}
	}

	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].remainder > shares[b].remainder
	})
	for r := 0; assigned < k; r++ {
		counts[shares[r%len(shares)].idx]++
		assigned++
	}
	return counts
}

// SubslotAngles returns one angle per subslot: evenly spaced within each
// segment according to Apportion, 0 for any that could not be placed.
func SubslotAngles(segs []Segment, k int) []float64 {
	angles := make([]float64, 0, k)
	for i, c := range Apportion(segs, k) {
		if c == 0 {
			continue
		}
		step := segs[i].Len() / float64(c)
		for idx := 0; idx < c; idx++ {
			angles = append(angles, segs[i].Start+step*(float64(idx)+0.5))
		}
	}
	for len(angles) < k {
		angles = append(angles, 0)
	}
	return angles[:k]
}

// AllocateSubslots pairs windows with the hotkey pool in order and places
// them on the outer ring inside the free segments. Windows beyond the pool
// are left out.
func AllocateSubslots(windows []Window, free []Segment, center Point, sf float64, p Params) []SubSlot {
	n := len(windows)
	if n > len(p.SubslotKeys) {
		n = len(p.SubslotKeys)
	}
	if n == 0 {
		return nil
	}

	orbit := p.OuterRadius * p.SubslotRingFactor * sf
	radius := p.SlotRadius * p.SubslotSizeFactor * sf

	angles := SubslotAngles(free, n)
	out := make([]SubSlot, n)
	for i := 0; i < n; i++ {
		out[i] = SubSlot{
			Window: windows[i],
			Key:    p.SubslotKeys[i],
			Angle:  angles[i],
			Geometry: SlotGeometry{
				Center: center.Polar(angles[i], orbit),
				Radius: radius,
				Scale:  p.SubslotContentScale,
			},
		}
	}
	return out
}
