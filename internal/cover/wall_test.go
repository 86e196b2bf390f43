package cover

import (
	"math"
	"testing"

	"github.com/louisbranch/defilade/internal/geo"
)

func TestWallBlocksRay(t *testing.T) {
	// Vertical wall at x=5 from y=-5 to y=5, observers on the left.
	wall := Wall{Start: geo.Point{X: 5, Y: -5}, End: geo.Point{X: 5, Y: 5}, BlocksSight: true}
	from := geo.Point{X: 0, Y: 0}
	to := geo.Point{X: 10, Y: 0}

	tests := []struct {
		name   string
		mutate func(*Wall)
		want   bool
	}{
		{"plain wall blocks", func(*Wall) {}, true},
		{"non sight blocking", func(w *Wall) { w.BlocksSight = false }, false},
		{"open door bypass", func(w *Wall) { w.Door = DoorOpen }, false},
		{"closed door blocks", func(w *Wall) { w.Door = DoorClosed }, true},
		{"locked door blocks", func(w *Wall) { w.Door = DoorLocked }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wall
			tt.mutate(&w)
			if got := w.BlocksRay(from, to); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionalWallBlocksOneSide(t *testing.T) {
	// Wall runs from (5,-5) up to (5,5); its direction vector points +Y, so
	// the left side is negative X.
	wall := Wall{Start: geo.Point{X: 5, Y: -5}, End: geo.Point{X: 5, Y: 5}, BlocksSight: true, Dir: DirLeft}

	left := geo.Point{X: 0, Y: 0}
	right := geo.Point{X: 10, Y: 0}

	if !wall.BlocksRay(left, right) {
		t.Fatal("expected left-side observer to be blocked")
	}
	if wall.BlocksRay(right, left) {
		t.Fatal("expected right-side observer to pass")
	}

	wall.Dir = DirRight
	if wall.BlocksRay(left, right) {
		t.Fatal("expected left-side observer to pass with DirRight")
	}
	if !wall.BlocksRay(right, left) {
		t.Fatal("expected right-side observer to be blocked with DirRight")
	}
}

func TestDirectionalWallObserverOnLine(t *testing.T) {
	wall := Wall{Start: geo.Point{X: 5, Y: -5}, End: geo.Point{X: 5, Y: 5}, BlocksSight: true, Dir: DirLeft}
	onLine := geo.Point{X: 5, Y: -10}
	if wall.BlocksRay(onLine, geo.Point{X: 5, Y: 10}) {
		t.Fatal("observer on the wall line blocks from neither side")
	}
}

func TestMalformedWallSkipped(t *testing.T) {
	wall := Wall{
		Start:       geo.Point{X: math.NaN(), Y: 0},
		End:         geo.Point{X: 5, Y: 5},
		BlocksSight: true,
	}
	if wall.BlocksRay(geo.Point{X: 0, Y: 0}, geo.Point{X: 10, Y: 10}) {
		t.Fatal("malformed wall should never block")
	}
}

func TestWallMissesRay(t *testing.T) {
	wall := Wall{Start: geo.Point{X: 5, Y: 10}, End: geo.Point{X: 5, Y: 20}, BlocksSight: true}
	if wall.BlocksRay(geo.Point{X: 0, Y: 0}, geo.Point{X: 10, Y: 0}) {
		t.Fatal("wall clear of the segment should not block")
	}
}
