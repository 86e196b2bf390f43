package cover

import (
	"github.com/louisbranch/defilade/internal/geo"
)

// Breakdown carries the per-source results of one evaluation so callers can
// present wall and token cover separately. Final is the level-max of both.
type Breakdown struct {
	Wall  Level
	Token Level
	Final Level
}

// Detector is the cover orchestrator. It is safe for concurrent use: the
// configuration is read-only and every call works on its own snapshot.
type Detector struct {
	cfg Config
}

// NewDetector builds a detector with the given configuration. Out-of-range
// tunables are clamped to their defaults.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.normalized()}
}

// Config returns the normalized configuration in effect.
func (d *Detector) Config() Config {
	return d.cfg
}

// BetweenTokens returns the cover level the target has from the attacker.
// It never fails: any internal error degrades to None.
func (d *Detector) BetweenTokens(snap Snapshot, attacker, target Token) Level {
	breakdown, err := d.Evaluate(snap, attacker, target)
	if err != nil {
		return failSoft(snap, attacker.Center, target)
	}
	return breakdown.Final
}

// FromPoint returns the cover level the target has from a bare origin point,
// treated as a zero-size pseudo-entity.
func (d *Detector) FromPoint(snap Snapshot, origin geo.Point, target Token) Level {
	return d.BetweenTokens(snap, PointToken(origin), target)
}

// Evaluate runs the full pipeline and returns the per-source breakdown. The
// error return keeps internal stages inspectable; the Level-only entry
// points map any error to the fail-soft result.
func (d *Detector) Evaluate(snap Snapshot, attacker, target Token) (Breakdown, error) {
	if !attacker.Center.Finite() || !target.Center.Finite() {
		return Breakdown{}, ErrGeometryUnavailable
	}

	wallLevel, err := evaluateWalls(snap, attacker.Center, target, d.cfg)
	if err != nil {
		return Breakdown{}, err
	}

	tokenLevel, err := d.evaluateTokens(snap, attacker, target)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Wall:  wallLevel,
		Token: tokenLevel,
		Final: MaxLevel(wallLevel, tokenLevel),
	}, nil
}

// evaluateTokens filters blockers, runs the active strategy, and applies the
// blocker override layer: the first manual override among eligible blockers
// crossing the center sightline replaces the computed value outright.
func (d *Detector) evaluateTokens(snap Snapshot, attacker, target Token) (Level, error) {
	eligible := FilterBlockers(snap, attacker, target, d.cfg.Policy)
	filtered := filterElevation(snap, attacker, target, eligible, d.cfg)

	level, err := strategyFor(d.cfg).Evaluate(snap, attacker, target, filtered)
	if err != nil {
		return None, err
	}

	if override, ok := blockerOverride(snap, attacker, target, eligible); ok {
		return override, nil
	}
	return level, nil
}

// blockerOverride returns the first manual override among eligible blockers
// whose footprint crosses the attacker-target center sightline. Unlike wall
// overrides this is a direct substitution, not a ceiling.
func blockerOverride(snap Snapshot, attacker, target Token, eligible []Token) (Level, bool) {
	grid := snap.gridSize()
	for _, blocker := range eligible {
		if blocker.Override == nil {
			continue
		}
		if geo.SegmentIntersectsRect(attacker.Center, target.Center, blocker.Footprint(grid)) {
			return *blocker.Override, true
		}
	}
	return None, false
}

// failSoft degrades to a single center-to-center ray test, defaulting to
// None when even that is unavailable.
func failSoft(snap Snapshot, from geo.Point, target Token) Level {
	if !from.Finite() || !target.Center.Finite() {
		return None
	}
	if rayBlocked(snap.Walls, from, target.Center) {
		return Standard
	}
	return None
}
