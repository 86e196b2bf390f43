package cover

import (
	"math"

	"github.com/louisbranch/defilade/internal/geo"
)

// filterElevation discards blockers whose vertical span cannot intersect the
// sightline geometry the active strategy uses at the blocker's horizontal
// position. Blockers that fail horizontal betweenness are excluded before
// elevation is evaluated.
//
// Per mode:
//   - Tactical: interpolate every attacker-corner/target-corner line; a
//     blocker passes if any pair's elevation falls inside its span.
//   - Coverage: center-to-center interpolation widened by a symmetric
//     tolerance band, reflecting that strategy's sampling nature.
//   - Size-differential and Sampled3D: the permissive envelope spanned by
//     all corner-to-corner lines. Size-differential is horizontally driven
//     and must not over-filter; Sampled3D re-filters strictly per elevation
//     slice inside the strategy itself.
func filterElevation(snap Snapshot, attacker, target Token, blockers []Token, cfg Config) []Token {
	grid := snap.gridSize()
	out := make([]Token, 0, len(blockers))

	for _, blocker := range blockers {
		if !horizontallyBetween(blocker, attacker, target, grid) {
			continue
		}

		span := blocker.VerticalSpan()
		switch cfg.Mode {
		case ModeTactical:
			if anyCornerLineInSpan(attacker, target, blocker, span, grid) {
				out = append(out, blocker)
			}
		case ModeCoverage:
			e := centerLineElevation(attacker, target, blocker.Center)
			if span.Inflate(cfg.ElevationTolerance).Contains(e) {
				out = append(out, blocker)
			}
		default: // ModeSizeDifferential, ModeSampled3D
			if cornerLineEnvelope(attacker, target, blocker, grid).Overlaps(span) {
				out = append(out, blocker)
			}
		}
	}
	return out
}

// horizontallyBetween reports whether the blocker is roughly collinear with
// the attacker-target center line: its center projects strictly between the
// endpoints and sits no farther from the line than its own circumradius.
func horizontallyBetween(blocker, attacker, target Token, grid float64) bool {
	a := attacker.Center
	b := target.Center
	if a == b {
		return false
	}
	if !geo.Between(blocker.Center, a, b) {
		return false
	}
	radius := blocker.Footprint(grid).Circumradius()
	return geo.DistanceToSegment(blocker.Center, a, b) <= radius
}

// centerLineElevation interpolates the sightline elevation at the blocker's
// horizontal offset between the attacker and target sight elevations.
func centerLineElevation(attacker, target Token, at geo.Point) float64 {
	t := clamp01(geo.ProjectOnSegment(at, attacker.Center, target.Center))
	return geo.Lerp(attacker.SightElevation(), target.SightElevation(), t)
}

// cornerLineElevations yields the interpolated elevations of every
// attacker-corner to target-corner line at the blocker's horizontal offset.
func cornerLineElevations(attacker, target, blocker Token, grid float64, visit func(float64)) {
	aSpan := attacker.VerticalSpan()
	tSpan := target.VerticalSpan()
	aLevels := [2]float64{aSpan.Bottom, aSpan.Top}
	tLevels := [2]float64{tSpan.Bottom, tSpan.Top}

	for _, ac := range attacker.Corners(grid) {
		for _, tc := range target.Corners(grid) {
			if ac == tc {
				continue
			}
			t := clamp01(geo.ProjectOnSegment(blocker.Center, ac, tc))
			for _, ae := range aLevels {
				for _, te := range tLevels {
					visit(geo.Lerp(ae, te, t))
				}
			}
		}
	}
}

func anyCornerLineInSpan(attacker, target, blocker Token, span Span, grid float64) bool {
	found := false
	cornerLineElevations(attacker, target, blocker, grid, func(e float64) {
		if span.Contains(e) {
			found = true
		}
	})
	return found
}

func cornerLineEnvelope(attacker, target, blocker Token, grid float64) Span {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	cornerLineElevations(attacker, target, blocker, grid, func(e float64) {
		lo = math.Min(lo, e)
		hi = math.Max(hi, e)
	})
	if lo > hi {
		// No corner lines (degenerate pair); fall back to the center line.
		e := centerLineElevation(attacker, target, blocker.Center)
		return Span{Bottom: e, Top: e}
	}
	return Span{Bottom: lo, Top: hi}
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
