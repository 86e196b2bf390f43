package cover

import (
	"math"

	"github.com/louisbranch/defilade/internal/geo"
)

// Direction selects one-sided wall blocking. The blocking side is defined by
// the sign of the cross product of the wall direction vector (start to end)
// with the vector from the wall start to the observer: DirLeft blocks
// observers on the positive (left) side, DirRight on the negative side.
type Direction int

const (
	DirNone Direction = iota
	DirLeft
	DirRight
)

// Door is the door state carried by a wall segment. Open doors never block
// sight; closed and locked doors block when the wall does.
type Door int

const (
	DoorNone Door = iota
	DoorClosed
	DoorOpen
	DoorLocked
)

// Wall is a static linear obstacle.
type Wall struct {
	Start geo.Point
	End   geo.Point

	BlocksSight bool
	Dir         Direction
	Door        Door

	// Override combines with the computed wall cover: a ceiling on a
	// detected result, a floor when the wall scan found nothing, and an
	// unconditional None when set to None. Nil means automatic resolution.
	Override *Level
}

// finite reports whether all wall coordinates are usable numbers. Malformed
// walls are skipped silently during evaluation.
func (w Wall) finite() bool {
	return w.Start.Finite() && w.End.Finite()
}

// blocksFrom reports whether the wall blocks sight for an observer at from:
// the wall must block sight, must not be an open door, and for directional
// walls the observer must stand on the blocking side.
func (w Wall) blocksFrom(from geo.Point) bool {
	if !w.BlocksSight || w.Door == DoorOpen || !w.finite() {
		return false
	}
	if w.Dir == DirNone {
		return true
	}
	cross := (w.End.X-w.Start.X)*(from.Y-w.Start.Y) - (w.End.Y-w.Start.Y)*(from.X-w.Start.X)
	if math.Abs(cross) == 0 {
		// Observer exactly on the wall line blocks from neither side.
		return false
	}
	if w.Dir == DirLeft {
		return cross > 0
	}
	return cross < 0
}

// BlocksRay reports whether the wall blocks the sightline from from to to.
func (w Wall) BlocksRay(from, to geo.Point) bool {
	if !w.blocksFrom(from) {
		return false
	}
	return geo.SegmentsIntersect(from, to, w.Start, w.End)
}
