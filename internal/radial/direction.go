package radial

import (
	"fmt"
	"math"
	"strings"
)

// SlotCount is the number of compass slots on the ring.
const SlotCount = 8

// AngleStep is the angular distance between neighbouring compass slots.
const AngleStep = fullTurn / SlotCount

// startOffset puts slot 0 straight up.
const startOffset = -math.Pi / 2

// Direction is one of the eight compass slots, numbered clockwise from North.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = [SlotCount]string{
	"North", "NorthEast", "East", "SouthEast",
	"South", "SouthWest", "West", "NorthWest",
}

var directionAbbrevs = [SlotCount]string{"n", "ne", "e", "se", "s", "sw", "w", "nw"}

// directionLookup maps every accepted lower-case spelling to its direction.
var directionLookup = func() map[string]Direction {
	m := make(map[string]Direction, SlotCount*3)
	for i := 0; i < SlotCount; i++ {
		d := Direction(i)
		m[strings.ToLower(directionNames[i])] = d
		m[directionAbbrevs[i]] = d
		m[fmt.Sprintf("%d", i)] = d
	}
	return m
}()

// ParseDirection accepts a full name ("NorthWest"), a two-letter
// abbreviation ("nw") or an index ("7"), ignoring case and surrounding space.
func ParseDirection(s string) (Direction, error) {
	d, ok := directionLookup[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// DirectionFromIndex returns the direction for idx, wrapping modulo 8.
func DirectionFromIndex(idx int) Direction {
	idx %= SlotCount
	if idx < 0 {
		idx += SlotCount
	}
	return Direction(idx)
}

// Index returns the slot index of d.
func (d Direction) Index() int {
	return int(d)
}

// Valid reports whether d names one of the eight compass slots.
func (d Direction) Valid() bool {
	return d >= North && d <= NorthWest
}

// Angle returns the fixed compass angle of d.
func (d Direction) Angle() float64 {
	return SlotAngle(int(d))
}

// String returns the full direction name.
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Abbrev returns the two-letter lower-case form used in config files.
func (d Direction) Abbrev() string {
	if !d.Valid() {
		return ""
	}
	return directionAbbrevs[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.Abbrev()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so YAML and TOML
// decoders accept every spelling ParseDirection does.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SlotAngle returns the normalized compass angle for slot index i.
func SlotAngle(i int) float64 {
	return Normalize(startOffset + float64(i)*AngleStep)
}
