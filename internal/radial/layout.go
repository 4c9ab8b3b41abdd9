package radial

// Params holds the base dimensions of the ring at the reference monitor
// height. Every radius is multiplied by the scale factor at layout time.
type Params struct {
	InnerRadius     float64 // dead zone
	OuterRadius     float64 // activation ring
	MenuRadius      float64 // slot orbit
	SlotRadius      float64 // slot disc at scale 1
	CenterRadius    float64
	ReferenceHeight float64
	SubslotKeys     []rune

	MaxScale            float64
	BlockPadding        float64
	SubslotRingFactor   float64
	SubslotSizeFactor   float64
	SubslotContentScale float64
}

// DefaultParams returns the stock ring dimensions.
func DefaultParams() Params {
	return Params{
		InnerRadius:     48,
		OuterRadius:     128,
		MenuRadius:      120,
		SlotRadius:      52,
		CenterRadius:    32,
		ReferenceHeight: 1440,
		SubslotKeys:     []rune("asdfqwerzxcv"),

		MaxScale:            2.5,
		BlockPadding:        1.3,
		SubslotRingFactor:   1.6,
		SubslotSizeFactor:   0.4,
		SubslotContentScale: 0.6,
	}
}

// ScaleFactor converts a monitor height into the factor applied to every
// radius. Non-positive heights yield 0.
func (p Params) ScaleFactor(monitorHeight float64) float64 {
	if monitorHeight <= 0 || p.ReferenceHeight <= 0 {
		return 0
	}
	return monitorHeight / p.ReferenceHeight
}

// SlotGeometry is where and how large one slot or subslot is drawn.
type SlotGeometry struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Scale  float64 `json:"scale"`
}

// SubSlot is a running window that no slot is bound to, placed in the free
// space between slots and reachable through its hotkey.
type SubSlot struct {
	Window   Window       `json:"window"`
	Key      rune         `json:"key"`
	Angle    float64      `json:"angle"`
	Geometry SlotGeometry `json:"geometry"`
}

// Snapshot is the complete geometry of one layout pass. Slots[i] is nil
// exactly when slot i is empty.
type Snapshot struct {
	Slots    [SlotCount]*SlotGeometry `json:"slots"`
	SubSlots []SubSlot                `json:"subslots"`
	Free     []Segment                `json:"free"`
}

// ComputeLayout places every bound slot around center, carves the free arcs
// out of the circle and distributes the windows as subslots across them.
func ComputeLayout(slots [SlotCount]Slot, windows []Window, center Point, sf float64, p Params) Snapshot {
	var snap Snapshot

	populated := Populated(slots)
	for _, i := range populated {
		g := PlaceSlot(i, populated, center, sf, p)
		snap.Slots[i] = &g
	}

	snap.Free = FreeSegments(snap.Slots, sf, p)
	snap.SubSlots = AllocateSubslots(windows, snap.Free, center, sf, p)
	return snap
}

// ExtentRadius is the distance from the center to the outermost painted
// pixel of a layout at scale factor sf.
func (p Params) ExtentRadius(sf float64) float64 {
	slotEdge := p.MenuRadius + p.SlotRadius*p.MaxScale
	subEdge := p.OuterRadius*p.SubslotRingFactor + p.SlotRadius*p.SubslotSizeFactor
	edge := slotEdge
	if subEdge > edge {
		edge = subEdge
	}
	if p.OuterRadius > edge {
		edge = p.OuterRadius
	}
	return edge * sf
}
