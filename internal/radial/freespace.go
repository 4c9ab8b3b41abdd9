package radial

import "math"

// minFreeSpace is the total free arc below which the ring counts as full.
const minFreeSpace = 1e-3

// BlockHalfAngle is the half-width of the arc a slot of the given radius
// occupies on an orbit, padded so neighbours do not touch.
func BlockHalfAngle(radius, orbit, padding float64) float64 {
	if orbit <= 0 || radius <= 0 {
		return 0
	}
	return math.Atan(radius * padding / orbit)
}

// FreeSegments subtracts the footprint of every placed slot from the full
// circle. When nothing is left the whole circle is returned so subslots
// overlap the slots instead of vanishing.
func FreeSegments(slots [SlotCount]*SlotGeometry, sf float64, p Params) []Segment {
	free := []Segment{FullCircle()}
	orbit := p.MenuRadius * sf

	for i, g := range slots {
		if g == nil {
			continue
		}
		half := BlockHalfAngle(g.Radius, orbit, p.BlockPadding)
		for _, block := range splitBlock(SlotAngle(i), half) {
			free = subtractAll(free, block)
		}
	}

	if TotalLen(free) < minFreeSpace {
		return []Segment{FullCircle()}
	}
	return free
}
