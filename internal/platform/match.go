package platform

import (
	"strings"

	"github.com/1broseidon/halo/internal/radial"
)

// MatchScore ranks how well a window class matches a wanted class.
type MatchScore int

const (
	MatchNone MatchScore = iota
	MatchFuzzy
	MatchComponent
	MatchExact
)

func (s MatchScore) String() string {
	switch s {
	case MatchNone:
		return "none"
	case MatchFuzzy:
		return "fuzzy"
	case MatchComponent:
		return "component"
	case MatchExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ScoreClass compares case-insensitively. A class such as
// "org.gnome.Nautilus" matches "nautilus" by component; substring
// containment in either direction is a fuzzy match.
func ScoreClass(windowClass, want string) MatchScore {
	w := strings.ToLower(strings.TrimSpace(windowClass))
	t := strings.ToLower(strings.TrimSpace(want))
	if w == "" || t == "" {
		return MatchNone
	}
	if w == t {
		return MatchExact
	}
	for _, part := range strings.Split(w, ".") {
		if part == t {
			return MatchComponent
		}
	}
	if strings.Contains(w, t) || strings.Contains(t, w) {
		return MatchFuzzy
	}
	return MatchNone
}

// BestMatch returns the window whose class scores highest against want.
// Later windows win ties. ok is false when nothing matches.
func BestMatch(windows []radial.Window, want string) (radial.Window, MatchScore, bool) {
	var (
		best  radial.Window
		score MatchScore
	)
	for _, w := range windows {
		s := ScoreClass(w.Class, want)
		if s != MatchNone && s >= score {
			best, score = w, s
		}
	}
	return best, score, score != MatchNone
}
