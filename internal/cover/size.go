package cover

// Size is a creature size category. Categories have a fixed rank, a fixed
// number of grid squares per footprint side, and a fixed nominal height in
// scene elevation units.
type Size int

const (
	Tiny Size = iota
	Small
	Medium
	Large
	Huge
	Gargantuan
)

// tinyEffectiveSquares is the reduced footprint side, in grid squares, used
// for Tiny corner geometry. Tiny creatures occupy a full square but shelter
// within part of it.
const tinyEffectiveSquares = 0.7

// Rank returns the size rank 0..5 used by size-differential cover rules.
func (s Size) Rank() int {
	if s < Tiny || s > Gargantuan {
		return int(Medium)
	}
	return int(s)
}

// Squares returns the footprint side length in grid squares.
func (s Size) Squares() float64 {
	switch s {
	case Tiny, Small, Medium:
		return 1
	case Large:
		return 2
	case Huge:
		return 3
	case Gargantuan:
		return 4
	default:
		return 1
	}
}

// Height returns the nominal height in scene elevation units at a 5-unit grid.
func (s Size) Height() float64 {
	switch s {
	case Tiny:
		return 2.5
	case Small, Medium:
		return 5
	case Large:
		return 10
	case Huge:
		return 15
	case Gargantuan:
		return 20
	default:
		return 5
	}
}

// String returns the lowercase category label.
func (s Size) String() string {
	switch s {
	case Tiny:
		return "tiny"
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	case Huge:
		return "huge"
	case Gargantuan:
		return "gargantuan"
	default:
		return "medium"
	}
}

// ParseSize maps a category label to a Size. Unknown labels report ok=false.
func ParseSize(label string) (Size, bool) {
	switch label {
	case "tiny":
		return Tiny, true
	case "small":
		return Small, true
	case "medium":
		return Medium, true
	case "large":
		return Large, true
	case "huge":
		return Huge, true
	case "gargantuan":
		return Gargantuan, true
	default:
		return Medium, false
	}
}
