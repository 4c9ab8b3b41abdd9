package radial

import "math"

// Squish turns the breathing room around a slot into its visual scale.
// Growth is sub-linear and capped at maxScale.
func Squish(width, maxScale float64) float64 {
	if width <= 0 {
		return 0
	}
	return math.Min(math.Sqrt(width/AngleStep), maxScale)
}

// Neighbours returns the populated indices before and after i in circular
// order. A lone slot is its own neighbour on both sides.
func Neighbours(i int, populated []int) (prev, next int) {
	pos := -1
	for k, idx := range populated {
		if idx == i {
			pos = k
			break
		}
	}
	if pos < 0 || len(populated) == 0 {
		return i, i
	}
	n := len(populated)
	return populated[(pos+n-1)%n], populated[(pos+1)%n]
}

// Breathing returns the average angular gap to the neighbouring populated
// slots of i.
func Breathing(i int, populated []int) float64 {
	prev, next := Neighbours(i, populated)

	left := fullTurn
	if prev != i {
		left = float64((i-prev+SlotCount)%SlotCount) * AngleStep
	}
	right := fullTurn
	if next != i {
		right = float64((next-i+SlotCount)%SlotCount) * AngleStep
	}
	return (left + right) / 2
}

// PlaceSlot computes the geometry of populated slot i. The disc shrinks as
// neighbours crowd in, but its center always sits on the compass angle at
// the fixed menu orbit.
func PlaceSlot(i int, populated []int, center Point, sf float64, p Params) SlotGeometry {
	scale := Squish(Breathing(i, populated), p.MaxScale)
	return SlotGeometry{
		Center: center.Polar(SlotAngle(i), p.MenuRadius*sf),
		Radius: p.SlotRadius * scale * sf,
		Scale:  scale,
	}
}
