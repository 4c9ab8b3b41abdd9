package radial

import "strings"

// Phase is the hover phase of the interaction state machine.
type Phase int

const (
	// PhaseIdle means the cursor is in the dead zone or no slot is bound.
	PhaseIdle Phase = iota
	// PhaseHovering means a slot is highlighted.
	PhaseHovering
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseHovering:
		return "hovering"
	default:
		return "unknown"
	}
}

// CursorAction is the outcome of one cursor update.
type CursorAction struct {
	Redraw   bool
	Activate bool
}

// State is the aggregate the controller owns: bound slots, the windows seen
// at the last refresh, hover state and the current layout snapshot. It is
// not safe for concurrent use.
type State struct {
	Center        Point
	Slots         [SlotCount]Slot
	ActiveClasses []string
	ScaleFactor   float64
	Layout        Snapshot

	params  Params
	windows []Window
	phase   Phase
	hover   int
}

// NewState creates an idle state for slots with a scale factor of 1.
func NewState(slots [SlotCount]Slot, p Params) *State {
	s := &State{
		Slots:       slots,
		ScaleFactor: 1,
		params:      p,
	}
	s.recompute()
	return s
}

// Params returns the ring dimensions in use.
func (s *State) Params() Params {
	return s.params
}

// SetParams replaces the ring dimensions and relayouts.
func (s *State) SetParams(p Params) {
	s.params = p
	s.recompute()
}

// Phase returns the current hover phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Hovered returns the index of the hovered slot.
func (s *State) Hovered() (int, bool) {
	if s.phase != PhaseHovering {
		return 0, false
	}
	return s.hover, true
}

// HoveredSlot returns the hovered slot, if any.
func (s *State) HoveredSlot() (Slot, bool) {
	i, ok := s.Hovered()
	if !ok {
		return Slot{}, false
	}
	return s.Slots[i], true
}

// HoveredApp returns the application of the hovered slot, if any.
func (s *State) HoveredApp() *App {
	slot, ok := s.HoveredSlot()
	if !ok {
		return nil
	}
	return slot.App
}

// SubslotForKey returns the subslot bound to key, ignoring case.
func (s *State) SubslotForKey(key rune) (SubSlot, bool) {
	for _, sub := range s.Layout.SubSlots {
		if strings.EqualFold(string(sub.Key), string(key)) {
			return sub, true
		}
	}
	return SubSlot{}, false
}

// UpdateCursor moves the cursor to p and reports whether the menu needs a
// redraw and whether the hovered slot should fire.
func (s *State) UpdateCursor(p Point) CursorAction {
	dist := s.Center.Distance(p)

	if dist <= s.params.InnerRadius*s.ScaleFactor {
		wasHovering := s.phase == PhaseHovering
		s.clearHover()
		return CursorAction{Redraw: wasHovering}
	}

	nearest, ok := s.nearestSlot(s.Center.AngleTo(p))
	prev, hovering := s.Hovered()
	changed := ok != hovering || (ok && nearest != prev)
	activate := ok && dist > s.params.OuterRadius*s.ScaleFactor

	if ok {
		s.phase = PhaseHovering
		s.hover = nearest
	} else {
		s.clearHover()
	}

	return CursorAction{Redraw: changed || activate, Activate: activate}
}

// nearestSlot finds the bound slot whose compass angle is closest to angle.
// The lowest index wins a tie.
func (s *State) nearestSlot(angle float64) (int, bool) {
	best, bestDist := -1, 0.0
	for i, slot := range s.Slots {
		if !slot.Bound() {
			continue
		}
		d := CircularDistance(angle, SlotAngle(i))
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

func (s *State) clearHover() {
	s.phase = PhaseIdle
	s.hover = 0
}

// Refresh recenters the ring, rescales it for monitorHeight and rebuilds the
// subslots from windows. Hover is reset.
func (s *State) Refresh(center Point, windows []Window, monitorHeight float64) {
	s.Center = center
	s.ScaleFactor = s.params.ScaleFactor(monitorHeight)
	s.windows = append([]Window(nil), windows...)
	s.ActiveClasses = Classes(windows)
	s.clearHover()
	s.recompute()
}

// SetSlots replaces the bound slots wholesale and relayouts.
func (s *State) SetSlots(slots [SlotCount]Slot) {
	s.Slots = slots
	s.clearHover()
	s.recompute()
}

// Running reports whether slot i has a matching active window.
func (s *State) Running(i int) bool {
	if i < 0 || i >= SlotCount {
		return false
	}
	return s.Slots[i].IsRunning(s.ActiveClasses)
}

func (s *State) recompute() {
	s.Layout = ComputeLayout(s.Slots, Unbound(s.Slots, s.windows), s.Center, s.ScaleFactor, s.params)
}
