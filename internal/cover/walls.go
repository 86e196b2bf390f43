package cover

import (
	"github.com/louisbranch/defilade/internal/geo"
)

// evaluateWalls decides how much of the target's footprint perimeter is
// shadowed by sight-blocking walls from the attacker's position and maps the
// weighted coverage percentage to a level.
//
// The scan samples evenly spaced points along the target footprint perimeter
// and counts the sample rays an eligible wall blocks. When the center
// sightline is clear, the raw percentage is scaled down by the edge-graze
// weight so perimeter grazing alone does not register as heavy cover.
//
// A per-wall manual override is collected from walls that block the
// attacker-to-center sightline. An override of None forces None
// unconditionally; otherwise the override is returned outright when the
// perimeter scan found no blocked sample (a floor), and caps the computed
// value when it did (a ceiling).
func evaluateWalls(snap Snapshot, attackerPos geo.Point, target Token, cfg Config) (Level, error) {
	if !attackerPos.Finite() || !target.Center.Finite() {
		return None, ErrGeometryUnavailable
	}

	rect := target.Footprint(snap.gridSize())
	center := rect.Center()
	samples := geo.PerimeterSamples(rect, cfg.Walls.SamplesPerEdge)
	if len(samples) == 0 {
		// Degenerate footprint: fall back to a single center-ray test.
		if rayBlocked(snap.Walls, attackerPos, center) {
			return Standard, nil
		}
		return None, nil
	}

	blocked := 0
	for _, sample := range samples {
		if rayBlocked(snap.Walls, attackerPos, sample) {
			blocked++
		}
	}

	centerBlocked := rayBlocked(snap.Walls, attackerPos, center)

	pct := float64(blocked) / float64(len(samples)) * 100
	if !centerBlocked {
		pct *= cfg.Walls.EdgeGrazeWeight
	}

	computed := None
	switch {
	case pct >= cfg.Walls.GreaterThreshold:
		if cfg.Walls.AllowGreater {
			computed = Greater
		} else {
			computed = Standard
		}
	case pct >= cfg.Walls.StandardThreshold:
		computed = Standard
	}

	override, hasOverride := wallOverride(snap.Walls, attackerPos, center)
	if !hasOverride {
		return computed, nil
	}
	if override == None {
		return None, nil
	}
	if blocked == 0 {
		// The scan found nothing; the override establishes a floor.
		return override, nil
	}
	return MinLevel(computed, override), nil
}

// rayBlocked reports whether any eligible wall blocks the from-to segment.
func rayBlocked(walls []Wall, from, to geo.Point) bool {
	for _, wall := range walls {
		if wall.BlocksRay(from, to) {
			return true
		}
	}
	return false
}

// wallOverride returns the first manual override among walls blocking the
// attacker-to-center sightline.
func wallOverride(walls []Wall, from, to geo.Point) (Level, bool) {
	for _, wall := range walls {
		if wall.Override == nil {
			continue
		}
		if wall.BlocksRay(from, to) {
			return *wall.Override, true
		}
	}
	return None, false
}
