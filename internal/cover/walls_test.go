package cover

import (
	"testing"

	"github.com/louisbranch/defilade/internal/geo"
)

func levelPtr(l Level) *Level { return &l }

// fullWall spans well past the sightline so every perimeter sample is cut.
func fullWall() Wall {
	return Wall{Start: geo.Point{X: 50, Y: -20}, End: geo.Point{X: 50, Y: 20}, BlocksSight: true}
}

func wallTarget() Token {
	// Medium target at (97.5, 0): footprint (95,-2.5)-(100,2.5) on a 5-unit grid.
	return Token{ID: "target", Center: geo.Point{X: 97.5, Y: 0}, Size: Medium}
}

func TestWallFullCenterOcclusionIsStandard(t *testing.T) {
	snap := Snapshot{Grid: 5, Walls: []Wall{fullWall()}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Standard {
		t.Fatalf("level = %v, want %v (allow-greater off caps at standard)", got, Standard)
	}
}

func TestWallAllowGreater(t *testing.T) {
	snap := Snapshot{Grid: 5, Walls: []Wall{fullWall()}}
	cfg := DefaultConfig()
	cfg.Walls.AllowGreater = true
	cfg = cfg.normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Greater {
		t.Fatalf("level = %v, want %v", got, Greater)
	}
}

func TestWallNoWallsIsNone(t *testing.T) {
	snap := Snapshot{Grid: 5}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != None {
		t.Fatalf("level = %v, want %v", got, None)
	}
}

func TestWallEdgeGrazeWeighting(t *testing.T) {
	// Wall covers only the lower half of the approach, leaving the center
	// ray clear; the graze weight keeps partial edge blocking below the
	// standard threshold.
	graze := Wall{Start: geo.Point{X: 50, Y: -20}, End: geo.Point{X: 50, Y: -0.5}, BlocksSight: true}
	snap := Snapshot{Grid: 5, Walls: []Wall{graze}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != None {
		t.Fatalf("level = %v, want %v under graze weighting", got, None)
	}
}

func TestWallOverrideCeiling(t *testing.T) {
	wall := fullWall()
	wall.Override = levelPtr(Lesser)
	snap := Snapshot{Grid: 5, Walls: []Wall{wall}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Lesser {
		t.Fatalf("level = %v, want override ceiling %v", got, Lesser)
	}
}

func TestWallOverrideNoneForcesNone(t *testing.T) {
	wall := fullWall()
	wall.Override = levelPtr(None)
	snap := Snapshot{Grid: 5, Walls: []Wall{wall}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != None {
		t.Fatalf("level = %v, want %v (override none is unconditional)", got, None)
	}
}

func TestWallOverrideFloorWhenScanFindsNothing(t *testing.T) {
	// A sliver of wall cuts the attacker-to-center ray but threads between
	// every perimeter sample ray, so the scan counts zero blocked samples.
	sliver := Wall{
		Start:       geo.Point{X: 50, Y: -0.01},
		End:         geo.Point{X: 50, Y: 0.01},
		BlocksSight: true,
		Override:    levelPtr(Greater),
	}
	target := Token{ID: "target", Center: geo.Point{X: 100, Y: 0}, Size: Medium}
	snap := Snapshot{Grid: 5, Walls: []Wall{sliver}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, target, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Greater {
		t.Fatalf("level = %v, want override floor %v", got, Greater)
	}

	// Without the override the same sliver computes to none.
	snap.Walls[0].Override = nil
	got, err = evaluateWalls(snap, geo.Point{X: 0, Y: 0}, target, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != None {
		t.Fatalf("level = %v, want %v without override", got, None)
	}
}

func TestWallDirectionalOnlyBlocksFacingSide(t *testing.T) {
	wall := fullWall()
	wall.Dir = DirRight // blocks observers on the +X side
	snap := Snapshot{Grid: 5, Walls: []Wall{wall}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != None {
		t.Fatalf("level = %v, want %v from the non-blocking side", got, None)
	}
}

func TestWallOpenDoorBypassesScan(t *testing.T) {
	wall := fullWall()
	wall.Door = DoorOpen
	snap := Snapshot{Grid: 5, Walls: []Wall{wall}}
	cfg := DefaultConfig().normalized()

	got, err := evaluateWalls(snap, geo.Point{X: 0, Y: 0}, wallTarget(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != None {
		t.Fatalf("level = %v, want %v through an open door", got, None)
	}
}
