// Package render draws the radial menu. A Scene is an immutable copy of one
// layout pass; painters read it and never touch the engine state.
package render

import (
	"github.com/1broseidon/halo/internal/radial"
)

// Kind distinguishes the two things drawn around the ring.
type Kind int

const (
	KindSlot Kind = iota
	KindSubslot
)

func (k Kind) String() string {
	switch k {
	case KindSlot:
		return "slot"
	case KindSubslot:
		return "subslot"
	default:
		return "unknown"
	}
}

// SlotState selects the fill color of a slot.
type SlotState int

const (
	StateIdle SlotState = iota
	StateRunning
	StateHovered
	StateBroken
)

func (s SlotState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHovered:
		return "hovered"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// ResolveState applies the priority broken > hovered > running > idle.
func ResolveState(slot radial.Slot, hovered bool, activeClasses []string) SlotState {
	switch {
	case slot.IsBroken():
		return StateBroken
	case hovered:
		return StateHovered
	case slot.IsRunning(activeClasses):
		return StateRunning
	default:
		return StateIdle
	}
}

// Item is one disc to draw. Key is set for subslots only; State is always
// StateRunning for subslots.
type Item struct {
	Kind     Kind                `json:"kind"`
	Index    int                 `json:"index"`
	Geometry radial.SlotGeometry `json:"geometry"`
	State    SlotState           `json:"state"`
	Label    string              `json:"label"`
	Icon     string              `json:"icon,omitempty"`
	Key      rune                `json:"key,omitempty"`
	Dimmed   bool                `json:"dimmed,omitempty"`
}

// Scene is everything a painter needs for one frame, in the coordinate
// space of the layout.
type Scene struct {
	Center       radial.Point `json:"center"`
	CenterRadius float64      `json:"center_radius"`
	Extent       float64      `json:"extent"`
	Items        []Item       `json:"items"`
}

// BuildScene copies the current layout out of s. Slots come first in
// compass order, then subslots in hotkey order.
func BuildScene(s *radial.State) Scene {
	p := s.Params()
	sf := s.ScaleFactor
	hovered, isHovering := s.Hovered()

	sc := Scene{
		Center:       s.Center,
		CenterRadius: p.CenterRadius * sf,
		Extent:       p.ExtentRadius(sf),
	}

	for i, g := range s.Layout.Slots {
		if g == nil || s.Slots[i].App == nil {
			continue
		}
		app := s.Slots[i].App
		isHovered := isHovering && hovered == i
		running := s.Slots[i].IsRunning(s.ActiveClasses)
		sc.Items = append(sc.Items, Item{
			Kind:     KindSlot,
			Index:    i,
			Geometry: *g,
			State:    ResolveState(s.Slots[i], isHovered, s.ActiveClasses),
			Label:    app.Name,
			Icon:     app.Icon,
			Dimmed:   !running && !isHovered,
		})
	}

	for i, sub := range s.Layout.SubSlots {
		label := sub.Window.Class
		if label == "" {
			label = sub.Window.Title
		}
		sc.Items = append(sc.Items, Item{
			Kind:     KindSubslot,
			Index:    i,
			Geometry: sub.Geometry,
			State:    StateRunning,
			Label:    label,
			Icon:     sub.Window.Icon,
			Key:      sub.Key,
		})
	}
	return sc
}

// Painter presents a scene, on screen or elsewhere.
type Painter interface {
	Paint(Scene) error
}
