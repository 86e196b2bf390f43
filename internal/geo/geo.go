// Package geo provides the planar geometry primitives for cover resolution:
// segment intersection, Liang-Barsky rectangle clipping, and footprint
// corner/perimeter enumeration. All coordinates are scene length units.
package geo

import "math"

// Point is a position on the battle grid plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned rectangle with X1 <= X2 and Y1 <= Y2.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// NewRect builds a normalized rectangle from two opposite corners.
func NewRect(x1, y1, x2, y2 float64) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Center returns the rectangle midpoint.
func (r Rect) Center() Point {
	return Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// LongerSide returns the larger of width and height.
func (r Rect) LongerSide() float64 {
	return math.Max(r.Width(), r.Height())
}

// Circumradius returns the distance from the center to a corner.
func (r Rect) Circumradius() float64 {
	return math.Hypot(r.Width(), r.Height()) / 2
}

// Contains reports whether p lies inside the rectangle, boundary included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

// Corners returns the rectangle corners in clockwise order from (X1, Y1).
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{X: r.X1, Y: r.Y1},
		{X: r.X2, Y: r.Y1},
		{X: r.X2, Y: r.Y2},
		{X: r.X1, Y: r.Y2},
	}
}

// Edges returns the four boundary segments as corner pairs.
func (r Rect) Edges() [4][2]Point {
	c := r.Corners()
	return [4][2]Point{
		{c[0], c[1]},
		{c[1], c[2]},
		{c[2], c[3]},
		{c[3], c[0]},
	}
}

// PerimeterSamples returns perEdge evenly spaced points along each edge of r,
// excluding the shared endpoint so corners are not counted twice. perEdge
// values below 1 fall back to 1.
func PerimeterSamples(r Rect, perEdge int) []Point {
	if perEdge < 1 {
		perEdge = 1
	}
	samples := make([]Point, 0, perEdge*4)
	for _, edge := range r.Edges() {
		for i := range perEdge {
			t := float64(i) / float64(perEdge)
			samples = append(samples, lerpPoint(edge[0], edge[1], t))
		}
	}
	return samples
}

func lerpPoint(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// orientation returns the sign of the cross product (b-a) x (c-a):
// positive for counter-clockwise, negative for clockwise, zero for collinear.
func orientation(a, b, c Point) int {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case cross > 0:
		return 1
	case cross < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether collinear point p lies within the bounding box
// of segment ab.
func onSegment(a, b, p Point) bool {
	return p.X >= math.Min(a.X, b.X) && p.X <= math.Max(a.X, b.X) &&
		p.Y >= math.Min(a.Y, b.Y) && p.Y <= math.Max(a.Y, b.Y)
}

// SegmentsIntersect reports whether segments p1p2 and q1q2 intersect,
// touching endpoints included. The test is symmetric under endpoint swap and
// under swapping the two segments.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear cases: an endpoint of one segment lies on the other.
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	if o3 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if o4 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	return false
}

// SegmentIntersectsRect reports whether segment p1p2 touches rectangle r:
// either endpoint inside, or any boundary edge crossed.
func SegmentIntersectsRect(p1, p2 Point, r Rect) bool {
	if r.Contains(p1) || r.Contains(p2) {
		return true
	}
	for _, edge := range r.Edges() {
		if SegmentsIntersect(p1, p2, edge[0], edge[1]) {
			return true
		}
	}
	return false
}

// ClipLength returns the Euclidean length of the part of segment p1p2 that
// lies inside rectangle r, computed with a Liang-Barsky clip of the segment
// parameter interval [0,1] against the rectangle's four half-planes. An empty
// or inverted interval yields 0.
func ClipLength(p1, p2 Point, r Rect) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y

	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, p1.X-r.X1) {
		return 0
	}
	if !clip(dx, r.X2-p1.X) {
		return 0
	}
	if !clip(-dy, p1.Y-r.Y1) {
		return 0
	}
	if !clip(dy, r.Y2-p1.Y) {
		return 0
	}
	if t1 < t0 {
		return 0
	}
	return (t1 - t0) * math.Hypot(dx, dy)
}

// DistanceToSegment returns the shortest distance from p to segment ab.
func DistanceToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// ProjectOnSegment returns the normalized projection parameter of p onto the
// infinite line through ab: 0 at a, 1 at b. A degenerate segment yields 0.
func ProjectOnSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	return ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
}

// Between reports whether p projects strictly between the endpoints of ab.
func Between(p, a, b Point) bool {
	t := ProjectOnSegment(p, a, b)
	return t > 0 && t < 1
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Lerp interpolates between two scalars by fraction t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
