package radial

import "strings"

// App is an application bound to a slot.
type App struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"` // resolved icon file path, empty when none was found
	Class string `json:"class"`
	Exec  string `json:"exec"`
}

// Slot is one compass position. A nil App means the slot is empty.
type Slot struct {
	App *App
}

// Bound reports whether an application is assigned to the slot.
func (s Slot) Bound() bool {
	return s.App != nil
}

// IsRunning reports whether any active window class matches the slot's
// class, ignoring case.
func (s Slot) IsRunning(activeClasses []string) bool {
	if s.App == nil || s.App.Class == "" {
		return false
	}
	for _, c := range activeClasses {
		if strings.EqualFold(c, s.App.Class) {
			return true
		}
	}
	return false
}

// IsBroken reports whether the slot is bound but its launch command is empty.
func (s Slot) IsBroken() bool {
	return s.App != nil && s.App.Exec == ""
}

// SlotSpec is one configured slot binding. Entries with a nil Direction do
// not take part in the layout.
type SlotSpec struct {
	Direction *Direction
	App       App
}

// InitSlots builds the eight slots from specs. Later entries for the same
// direction replace earlier ones.
func InitSlots(specs []SlotSpec) [SlotCount]Slot {
	var slots [SlotCount]Slot
	ApplySlots(&slots, specs)
	return slots
}

// ApplySlots binds specs onto an existing slot array. Directions not named
// by any spec keep their current binding.
func ApplySlots(slots *[SlotCount]Slot, specs []SlotSpec) {
	for _, spec := range specs {
		if spec.Direction == nil || !spec.Direction.Valid() {
			continue
		}
		app := spec.App
		slots[spec.Direction.Index()] = Slot{App: &app}
	}
}

// Populated returns the indices of bound slots in ascending order.
func Populated(slots [SlotCount]Slot) []int {
	out := make([]int, 0, SlotCount)
	for i, s := range slots {
		if s.Bound() {
			out = append(out, i)
		}
	}
	return out
}

// Window is a client window reported by the window manager.
type Window struct {
	ID    string `json:"id"`
	Class string `json:"class"`
	Title string `json:"title,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Classes returns the class of every window, in order.
func Classes(windows []Window) []string {
	out := make([]string, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.Class)
	}
	return out
}

// Unbound returns the windows whose class matches no bound slot.
func Unbound(slots [SlotCount]Slot, windows []Window) []Window {
	var out []Window
	for _, w := range windows {
		if w.Class == "" {
			continue
		}
		bound := false
		for _, s := range slots {
			if s.App != nil && strings.EqualFold(s.App.Class, w.Class) {
				bound = true
				break
			}
		}
		if !bound {
			out = append(out, w)
		}
	}
	return out
}
