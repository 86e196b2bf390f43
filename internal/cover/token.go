package cover

import (
	"github.com/louisbranch/defilade/internal/geo"
)

// Kind classifies what a token represents. Only creatures and cover-granting
// objects participate in token cover; loot and hazards are decoration unless
// explicitly flagged.
type Kind int

const (
	KindCreature Kind = iota
	KindObject
	KindLoot
	KindHazard
)

// Span is a closed elevation interval with Bottom <= Top.
type Span struct {
	Bottom float64
	Top    float64
}

// Contains reports whether e lies inside the span, boundary included.
func (s Span) Contains(e float64) bool {
	return e >= s.Bottom && e <= s.Top
}

// ContainsStrict reports whether e lies strictly inside the span.
func (s Span) ContainsStrict(e float64) bool {
	return e > s.Bottom && e < s.Top
}

// Overlaps reports whether two spans share any elevation.
func (s Span) Overlaps(other Span) bool {
	return s.Bottom <= other.Top && other.Bottom <= s.Top
}

// Mid returns the span midpoint.
func (s Span) Mid() float64 {
	return (s.Bottom + s.Top) / 2
}

// Inflate widens the span symmetrically by d on each side.
func (s Span) Inflate(d float64) Span {
	return Span{Bottom: s.Bottom - d, Top: s.Top + d}
}

// Token is a spatial entity on the grid: a potential attacker, target, or
// blocker. The engine only reads tokens; the caller owns them.
type Token struct {
	ID        string
	Center    geo.Point
	Size      Size
	Kind      Kind
	Elevation float64

	// Blocker eligibility attributes.
	Dead        bool
	Undetected  bool
	Prone       bool
	NeverBlocks bool
	GrantsCover bool // admits non-creature kinds as blockers
	Allegiance  string

	// Override replaces the computed token cover outright when set.
	// Nil means automatic resolution.
	Override *Level

	// point marks a zero-size pseudo-entity built by PointToken.
	point bool
}

// Footprint returns the full axis-aligned footprint for the given grid size.
func (t Token) Footprint(grid float64) geo.Rect {
	if t.point {
		return geo.NewRect(t.Center.X, t.Center.Y, t.Center.X, t.Center.Y)
	}
	half := t.Size.Squares() * grid / 2
	return geo.NewRect(t.Center.X-half, t.Center.Y-half, t.Center.X+half, t.Center.Y+half)
}

// EffectiveFootprint returns the footprint used for corner geometry. Tiny
// creatures use a reduced square centered on their position.
func (t Token) EffectiveFootprint(grid float64) geo.Rect {
	if t.point {
		return t.Footprint(grid)
	}
	squares := t.Size.Squares()
	if t.Size == Tiny {
		squares = tinyEffectiveSquares
	}
	half := squares * grid / 2
	return geo.NewRect(t.Center.X-half, t.Center.Y-half, t.Center.X+half, t.Center.Y+half)
}

// Corners returns the effective footprint corners.
func (t Token) Corners(grid float64) [4]geo.Point {
	return t.EffectiveFootprint(grid).Corners()
}

// VerticalSpan returns the elevation interval the token occupies.
func (t Token) VerticalSpan() Span {
	if t.point {
		return Span{Bottom: t.Elevation, Top: t.Elevation}
	}
	return Span{Bottom: t.Elevation, Top: t.Elevation + t.Size.Height()}
}

// SightElevation returns the elevation a center sightline leaves from or
// arrives at: the vertical span midpoint.
func (t Token) SightElevation() float64 {
	return t.VerticalSpan().Mid()
}

// cell returns the grid cell coordinates of the token center.
func (t Token) cell(grid float64) (int, int) {
	if grid <= 0 {
		grid = DefaultGridSize
	}
	return int(floorDiv(t.Center.X, grid)), int(floorDiv(t.Center.Y, grid))
}

func floorDiv(v, grid float64) float64 {
	q := v / grid
	f := float64(int(q))
	if q < f {
		f--
	}
	return f
}

// SameCell reports whether two tokens occupy the same grid cell.
func SameCell(a, b Token, grid float64) bool {
	ax, ay := a.cell(grid)
	bx, by := b.cell(grid)
	return ax == bx && ay == by
}

// PointToken wraps a bare origin point as a zero-size pseudo-entity: medium
// rank for size comparisons, degenerate footprint, zero nominal height.
func PointToken(origin geo.Point) Token {
	return Token{
		ID:     "origin",
		Center: origin,
		Size:   Medium,
		point:  true,
	}
}
