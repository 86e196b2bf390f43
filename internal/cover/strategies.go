package cover

import (
	"github.com/louisbranch/defilade/internal/geo"
)

// sizeDifferentialStrategy grants cover from any blocker footprint crossing
// the center sightline: Standard when the blocker outranks both endpoints by
// two size categories, Lesser otherwise.
type sizeDifferentialStrategy struct{}

func (sizeDifferentialStrategy) Evaluate(snap Snapshot, attacker, target Token, blockers []Token) (Level, error) {
	grid := snap.gridSize()
	a := attacker.Center
	b := target.Center

	result := None
	for _, blocker := range blockers {
		if !geo.SegmentIntersectsRect(a, b, blocker.Footprint(grid)) {
			continue
		}
		if sizeRankUpgrade(blocker, attacker, target) {
			return Standard, nil
		}
		result = MaxLevel(result, Lesser)
	}
	return result, nil
}

// tacticalStrategy evaluates corner-to-corner sightlines. For each attacker
// corner it counts blocked lines to the target's corners and maps the count
// to a level; the attacker keeps the corner yielding the lowest level.
type tacticalStrategy struct{}

func (tacticalStrategy) Evaluate(snap Snapshot, attacker, target Token, blockers []Token) (Level, error) {
	grid := snap.gridSize()

	best := Greater
	for _, ac := range attacker.Corners(grid) {
		blocked := 0
		for _, tc := range target.Corners(grid) {
			if cornerLineBlocked(snap, ac, tc, blockers, grid) {
				blocked++
			}
		}
		level := levelFromBlockedCorners(blocked)
		best = MinLevel(best, level)
		if best == None {
			break
		}
	}
	return best, nil
}

// cornerLineBlocked reports whether a corner-to-corner segment is blocked by
// an eligible wall or by any blocker footprint with non-zero clip length.
func cornerLineBlocked(snap Snapshot, from, to geo.Point, blockers []Token, grid float64) bool {
	if rayBlocked(snap.Walls, from, to) {
		return true
	}
	for _, blocker := range blockers {
		if geo.ClipLength(from, to, blocker.Footprint(grid)) > 0 {
			return true
		}
	}
	return false
}

// levelFromBlockedCorners maps a blocked corner-line count to a level.
func levelFromBlockedCorners(blocked int) Level {
	switch {
	case blocked <= 0:
		return None
	case blocked == 1:
		return Lesser
	case blocked <= 3:
		return Standard
	default:
		return Greater
	}
}

// coverageStrategy measures, per blocker, how much of the center sightline
// the blocker's footprint occludes relative to its longer side. Blockers are
// evaluated independently and the single worst result wins.
type coverageStrategy struct{}

func (coverageStrategy) Evaluate(snap Snapshot, attacker, target Token, blockers []Token) (Level, error) {
	grid := snap.gridSize()
	a := attacker.Center
	b := target.Center

	result := None
	for _, blocker := range blockers {
		fp := blocker.Footprint(grid)
		side := fp.LongerSide()
		if side <= 0 {
			continue
		}
		pct := geo.ClipLength(a, b, fp) / side * 100
		if pct > 100 {
			pct = 100
		}

		var level Level
		switch {
		case pct >= coverageGreaterPct:
			level = Greater
		case pct >= coverageStandardPct:
			level = Standard
		case pct >= coverageLesserPct:
			level = Lesser
		default:
			level = None
		}
		result = MaxLevel(result, level)
		if result == Greater {
			return Greater, nil
		}
	}
	return result, nil
}

// sampled3DStrategy slices the attacker/target vertical overlap band at
// three elevations and counts center-line footprint intersections among
// blockers whose span strictly contains each slice. The worst slice wins.
type sampled3DStrategy struct{}

// sampled3DFractions are the band offsets of the three elevation slices.
var sampled3DFractions = [3]float64{0.25, 0.5, 0.75}

func (sampled3DStrategy) Evaluate(snap Snapshot, attacker, target Token, blockers []Token) (Level, error) {
	grid := snap.gridSize()
	a := attacker.Center
	b := target.Center

	band := elevationBand(attacker, target)

	result := None
	for _, fraction := range sampled3DFractions {
		sample := geo.Lerp(band.Bottom, band.Top, fraction)

		count := 0
		upgrade := false
		for _, blocker := range blockers {
			if !blocker.VerticalSpan().ContainsStrict(sample) {
				continue
			}
			if !geo.SegmentIntersectsRect(a, b, blocker.Footprint(grid)) {
				continue
			}
			count++
			if sizeRankUpgrade(blocker, attacker, target) {
				upgrade = true
			}
		}

		level := levelFromSliceCount(count)
		if upgrade {
			level = MaxLevel(level, Standard)
		}
		result = MaxLevel(result, level)
		if result == Greater {
			return Greater, nil
		}
	}
	return result, nil
}

// elevationBand returns the attacker/target vertical overlap band, or the
// interval between their span midpoints when the spans do not overlap.
func elevationBand(attacker, target Token) Span {
	aSpan := attacker.VerticalSpan()
	tSpan := target.VerticalSpan()
	if aSpan.Overlaps(tSpan) {
		lo := aSpan.Bottom
		if tSpan.Bottom > lo {
			lo = tSpan.Bottom
		}
		hi := aSpan.Top
		if tSpan.Top < hi {
			hi = tSpan.Top
		}
		return Span{Bottom: lo, Top: hi}
	}
	aMid := aSpan.Mid()
	tMid := tSpan.Mid()
	if aMid <= tMid {
		return Span{Bottom: aMid, Top: tMid}
	}
	return Span{Bottom: tMid, Top: aMid}
}

// levelFromSliceCount maps a per-slice intersection count to a level.
func levelFromSliceCount(count int) Level {
	switch {
	case count <= 0:
		return None
	case count == 1:
		return Lesser
	case count <= 3:
		return Standard
	default:
		return Greater
	}
}
