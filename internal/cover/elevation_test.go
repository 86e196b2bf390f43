package cover

import (
	"testing"

	"github.com/louisbranch/defilade/internal/geo"
)

func elevationSnap(blockers ...Token) Snapshot {
	return Snapshot{Grid: 5, Blockers: blockers}
}

func TestElevationFilterExcludesOffLineBlockers(t *testing.T) {
	attacker := Token{ID: "a", Center: geo.Point{X: 0, Y: 0}, Size: Medium}
	target := Token{ID: "t", Center: geo.Point{X: 100, Y: 0}, Size: Medium}
	offLine := Token{ID: "b", Center: geo.Point{X: 50, Y: 40}, Size: Medium}

	cfg := DefaultConfig()
	got := filterElevation(elevationSnap(offLine), attacker, target, []Token{offLine}, cfg)
	if len(got) != 0 {
		t.Fatalf("kept = %d, want 0 for off-line blocker", len(got))
	}
}

func TestElevationFilterCoverageBand(t *testing.T) {
	attacker := Token{ID: "a", Center: geo.Point{X: 0, Y: 0}, Size: Medium}
	target := Token{ID: "t", Center: geo.Point{X: 100, Y: 0}, Size: Medium}

	// Center sightline runs level at elevation 2.5 (medium mid-height).
	tests := []struct {
		name      string
		elevation float64
		want      bool
	}{
		{"level blocker", 0, true},
		{"within tolerance above", 5, true}, // span [5,10] vs 2.5 +/- 3
		{"far above", 20, false},
		{"far below", -30, false},
	}

	cfg := DefaultConfig()
	cfg.Mode = ModeCoverage
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocker := Token{ID: "b", Center: geo.Point{X: 50, Y: 0}, Size: Medium, Elevation: tt.elevation}
			got := filterElevation(elevationSnap(blocker), attacker, target, []Token{blocker}, cfg)
			if kept := len(got) == 1; kept != tt.want {
				t.Fatalf("kept = %v, want %v", kept, tt.want)
			}
		})
	}
}

func TestElevationFilterTacticalCornerLines(t *testing.T) {
	// Attacker on the ground, target on a 30-unit ledge. A blocker midway at
	// elevation 15 sits on some corner-to-corner lines but far from the
	// midpoint of neither endpoint span.
	attacker := Token{ID: "a", Center: geo.Point{X: 0, Y: 0}, Size: Medium}
	target := Token{ID: "t", Center: geo.Point{X: 100, Y: 0}, Size: Medium, Elevation: 30}
	blocker := Token{ID: "b", Center: geo.Point{X: 50, Y: 0}, Size: Medium, Elevation: 15}

	cfg := DefaultConfig()
	cfg.Mode = ModeTactical
	got := filterElevation(elevationSnap(blocker), attacker, target, []Token{blocker}, cfg)
	if len(got) != 1 {
		t.Fatalf("kept = %d, want 1 for blocker on a corner line", len(got))
	}

	buried := Token{ID: "b2", Center: geo.Point{X: 50, Y: 0}, Size: Medium, Elevation: -50}
	got = filterElevation(elevationSnap(buried), attacker, target, []Token{buried}, cfg)
	if len(got) != 0 {
		t.Fatalf("kept = %d, want 0 for buried blocker", len(got))
	}
}

func TestElevationFilterPermissiveEnvelope(t *testing.T) {
	// Size-differential mode accepts any blocker overlapping the envelope of
	// all corner lines, even when the center line misses it.
	attacker := Token{ID: "a", Center: geo.Point{X: 0, Y: 0}, Size: Medium}
	target := Token{ID: "t", Center: geo.Point{X: 100, Y: 0}, Size: Medium, Elevation: 20}
	blocker := Token{ID: "b", Center: geo.Point{X: 50, Y: 0}, Size: Medium, Elevation: 14}

	cfg := DefaultConfig()
	cfg.Mode = ModeSizeDifferential
	got := filterElevation(elevationSnap(blocker), attacker, target, []Token{blocker}, cfg)
	if len(got) != 1 {
		t.Fatalf("kept = %d, want 1 under the permissive envelope", len(got))
	}

	above := Token{ID: "b2", Center: geo.Point{X: 50, Y: 0}, Size: Medium, Elevation: 40}
	got = filterElevation(elevationSnap(above), attacker, target, []Token{above}, cfg)
	if len(got) != 0 {
		t.Fatalf("kept = %d, want 0 above the envelope", len(got))
	}
}
