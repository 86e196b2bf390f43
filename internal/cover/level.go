// Package cover implements tactical cover resolution between spatial
// entities on a 2D battle grid with optional elevation. The engine is pure
// and stateless per call: it consumes an immutable scene snapshot plus a
// read-only configuration and returns a discrete cover level.
package cover

// Level is the ordered cover classification applied to an attack or check.
type Level int

const (
	None Level = iota
	Lesser
	Standard
	Greater
)

// String returns the lowercase label used on wire formats and storage.
func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Lesser:
		return "lesser"
	case Standard:
		return "standard"
	case Greater:
		return "greater"
	default:
		return "none"
	}
}

// ParseLevel maps a label back to a Level. Unknown labels report ok=false.
func ParseLevel(label string) (Level, bool) {
	switch label {
	case "none":
		return None, true
	case "lesser":
		return Lesser, true
	case "standard":
		return Standard, true
	case "greater":
		return Greater, true
	default:
		return None, false
	}
}

// MaxLevel returns the stronger of two levels.
func MaxLevel(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// MinLevel returns the weaker of two levels.
func MinLevel(a, b Level) Level {
	if a < b {
		return a
	}
	return b
}
