package cover

import (
	"github.com/louisbranch/defilade/internal/geo"
)

// FilterBlockers selects the obstacles eligible to contribute to token cover
// for the attacker/target pair. Exclusions apply in order: self, same-cell
// occupancy with either endpoint, non-corporeal kinds without an explicit
// cover grant, the never-blocks flag, then the policy-gated predicates.
// Tiny blockers never cover a non-Tiny target regardless of policy.
//
// When the nearest-blocker policy is set, the survivors are reduced to the
// single blocker whose center is closest to the attacker-target center line,
// considering only blockers lying between the endpoints; ties break toward
// the attacker.
func FilterBlockers(snap Snapshot, attacker, target Token, policy Policy) []Token {
	grid := snap.gridSize()
	eligible := make([]Token, 0, len(snap.Blockers))

	for _, blocker := range snap.Blockers {
		if blocker.ID != "" && (blocker.ID == attacker.ID || blocker.ID == target.ID) {
			continue
		}
		if SameCell(blocker, attacker, grid) || SameCell(blocker, target, grid) {
			continue
		}
		switch blocker.Kind {
		case KindLoot, KindHazard:
			if !blocker.GrantsCover {
				continue
			}
		}
		if blocker.NeverBlocks {
			continue
		}
		if blocker.Undetected && policy.IgnoreUndetected {
			continue
		}
		if blocker.Dead && policy.IgnoreDead {
			continue
		}
		if blocker.Prone && !policy.AllowProne {
			continue
		}
		if policy.IgnoreAllies && blocker.Allegiance != "" && blocker.Allegiance == attacker.Allegiance {
			continue
		}
		if blocker.Size == Tiny && target.Size != Tiny {
			continue
		}
		eligible = append(eligible, blocker)
	}

	if policy.NearestBlockerOnly && len(eligible) > 1 {
		if nearest, ok := nearestToSightline(eligible, attacker.Center, target.Center); ok {
			return []Token{nearest}
		}
	}
	return eligible
}

// nearestToSightline picks the blocker whose center is nearest the segment
// from a to b among those projecting strictly between the endpoints.
func nearestToSightline(blockers []Token, a, b geo.Point) (Token, bool) {
	var best Token
	bestDist := -1.0
	bestAlong := -1.0
	for _, blocker := range blockers {
		if !geo.Between(blocker.Center, a, b) {
			continue
		}
		dist := geo.DistanceToSegment(blocker.Center, a, b)
		along := geo.ProjectOnSegment(blocker.Center, a, b)
		if bestDist < 0 || dist < bestDist || (dist == bestDist && along < bestAlong) {
			best = blocker
			bestDist = dist
			bestAlong = along
		}
	}
	return best, bestDist >= 0
}
