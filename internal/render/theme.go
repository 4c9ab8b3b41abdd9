package render

import "image/color"

// Theme is the parsed color set used for a frame. Its layout matches
// config.Palette so one converts to the other directly.
type Theme struct {
	Hovered    color.NRGBA
	Running    color.NRGBA
	Idle       color.NRGBA
	Broken     color.NRGBA
	Center     color.NRGBA
	Background color.NRGBA
	Text       color.NRGBA
}

// DefaultTheme mirrors the stock config colors.
func DefaultTheme() Theme {
	return Theme{
		Hovered:    color.NRGBA{R: 0x66, G: 0x66, B: 0xcc, A: 0xe6},
		Running:    color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xd9},
		Idle:       color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0x80},
		Broken:     color.NRGBA{R: 0xcc, G: 0x33, B: 0x33, A: 0x80},
		Center:     color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0x26},
		Background: color.NRGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
		Text:       color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// Fill returns the disc color for a slot state.
func (t Theme) Fill(s SlotState) color.NRGBA {
	switch s {
	case StateBroken:
		return t.Broken
	case StateHovered:
		return t.Hovered
	case StateRunning:
		return t.Running
	default:
		return t.Idle
	}
}
