// Package scene owns the persisted scene document: the JSON shape stored in
// the scene store and exchanged over the HTTP and MCP surfaces. A document is
// normalized once into an engine snapshot; the engine itself never sees the
// wire form.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/louisbranch/defilade/internal/cover"
	"github.com/louisbranch/defilade/internal/geo"
)

// Document size limits enforced by Validate.
const (
	MaxTokens = 512
	MaxWalls  = 2048
)

var (
	ErrDuplicateToken = errors.New("scene: duplicate token id")
	ErrEmptyTokenID   = errors.New("scene: token id is empty")
	ErrTooLarge       = errors.New("scene: document exceeds size limits")
	ErrTokenNotFound  = errors.New("scene: token not found")
)

// Token is the wire form of a grid entity. Enumerations travel as lowercase
// labels; unknown labels degrade to defaults during Normalize.
type Token struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      string  `json:"size,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`

	Dead        bool   `json:"dead,omitempty"`
	Undetected  bool   `json:"undetected,omitempty"`
	Prone       bool   `json:"prone,omitempty"`
	NeverBlocks bool   `json:"never_blocks,omitempty"`
	GrantsCover bool   `json:"grants_cover,omitempty"`
	Allegiance  string `json:"allegiance,omitempty"`

	// Cover is the manual override label: empty or "auto" for automatic
	// resolution, otherwise a level label.
	Cover string `json:"cover,omitempty"`
}

// Wall is the wire form of a wall segment.
type Wall struct {
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	BlocksSight bool    `json:"blocks_sight"`
	Direction   string  `json:"direction,omitempty"`
	Door        string  `json:"door,omitempty"`
	Cover       string  `json:"cover,omitempty"`
}

// Scene is the stored document.
type Scene struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	GridSize float64 `json:"grid_size,omitempty"`
	Tokens   []Token `json:"tokens,omitempty"`
	Walls    []Wall  `json:"walls,omitempty"`
}

// Normalize applies the malformed-data policy in place: unknown or missing
// enum labels fall back to defaults, non-finite elevations reset to zero, and
// walls with non-finite coordinates are dropped. Safe to call repeatedly.
func (s *Scene) Normalize() {
	if s.GridSize <= 0 || math.IsNaN(s.GridSize) || math.IsInf(s.GridSize, 0) {
		s.GridSize = cover.DefaultGridSize
	}
	for i := range s.Tokens {
		t := &s.Tokens[i]
		if _, ok := cover.ParseSize(t.Size); !ok {
			t.Size = cover.Medium.String()
		}
		if _, ok := parseKind(t.Kind); !ok {
			t.Kind = "creature"
		}
		if math.IsNaN(t.Elevation) || math.IsInf(t.Elevation, 0) {
			t.Elevation = 0
		}
		if t.Cover != "" && t.Cover != "auto" {
			if _, ok := cover.ParseLevel(t.Cover); !ok {
				t.Cover = ""
			}
		}
	}
	kept := s.Walls[:0]
	for _, w := range s.Walls {
		if !finite(w.X1, w.Y1, w.X2, w.Y2) {
			continue
		}
		if _, ok := parseDirection(w.Direction); !ok {
			w.Direction = ""
		}
		if _, ok := parseDoor(w.Door); !ok {
			w.Door = ""
		}
		if w.Cover != "" && w.Cover != "auto" {
			if _, ok := cover.ParseLevel(w.Cover); !ok {
				w.Cover = ""
			}
		}
		kept = append(kept, w)
	}
	s.Walls = kept
}

// Validate reports structural problems Normalize does not repair.
func (s *Scene) Validate() error {
	if len(s.Tokens) > MaxTokens || len(s.Walls) > MaxWalls {
		return fmt.Errorf("%w: %d tokens, %d walls", ErrTooLarge, len(s.Tokens), len(s.Walls))
	}
	seen := make(map[string]struct{}, len(s.Tokens))
	for _, t := range s.Tokens {
		if t.ID == "" {
			return ErrEmptyTokenID
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateToken, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// Find returns the engine form of the token with the given id.
func (s *Scene) Find(id string) (cover.Token, bool) {
	for _, t := range s.Tokens {
		if t.ID == id {
			return t.toCover(), true
		}
	}
	return cover.Token{}, false
}

// ToCover builds the immutable engine snapshot for this document. The caller
// is expected to Normalize first; stray malformed values still degrade to the
// same defaults.
func (s *Scene) ToCover() cover.Snapshot {
	snap := cover.Snapshot{Grid: s.GridSize}
	if snap.Grid <= 0 {
		snap.Grid = cover.DefaultGridSize
	}
	snap.Blockers = make([]cover.Token, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		snap.Blockers = append(snap.Blockers, t.toCover())
	}
	snap.Walls = make([]cover.Wall, 0, len(s.Walls))
	for _, w := range s.Walls {
		snap.Walls = append(snap.Walls, w.toCover())
	}
	return snap
}

// Occupancy maps grid cells to the token ids standing in them.
func (s *Scene) Occupancy() map[[2]int][]string {
	grid := s.GridSize
	if grid <= 0 {
		grid = cover.DefaultGridSize
	}
	cells := make(map[[2]int][]string)
	for _, t := range s.Tokens {
		key := [2]int{int(math.Floor(t.X / grid)), int(math.Floor(t.Y / grid))}
		cells[key] = append(cells[key], t.ID)
	}
	return cells
}

func (t Token) toCover() cover.Token {
	size, _ := cover.ParseSize(t.Size)
	kind, _ := parseKind(t.Kind)
	ct := cover.Token{
		ID:          t.ID,
		Center:      geo.Point{X: t.X, Y: t.Y},
		Size:        size,
		Kind:        kind,
		Elevation:   t.Elevation,
		Dead:        t.Dead,
		Undetected:  t.Undetected,
		Prone:       t.Prone,
		NeverBlocks: t.NeverBlocks,
		GrantsCover: t.GrantsCover,
		Allegiance:  t.Allegiance,
	}
	if level, ok := overrideLevel(t.Cover); ok {
		ct.Override = &level
	}
	return ct
}

func (w Wall) toCover() cover.Wall {
	dir, _ := parseDirection(w.Direction)
	door, _ := parseDoor(w.Door)
	cw := cover.Wall{
		Start:       geo.Point{X: w.X1, Y: w.Y1},
		End:         geo.Point{X: w.X2, Y: w.Y2},
		BlocksSight: w.BlocksSight,
		Dir:         dir,
		Door:        door,
	}
	if level, ok := overrideLevel(w.Cover); ok {
		cw.Override = &level
	}
	return cw
}

// overrideLevel resolves a manual override label to a typed level. Empty and
// "auto" mean automatic resolution.
func overrideLevel(label string) (cover.Level, bool) {
	if label == "" || label == "auto" {
		return cover.None, false
	}
	return cover.ParseLevel(label)
}

func parseKind(label string) (cover.Kind, bool) {
	switch label {
	case "", "creature":
		return cover.KindCreature, true
	case "object":
		return cover.KindObject, true
	case "loot":
		return cover.KindLoot, true
	case "hazard":
		return cover.KindHazard, true
	default:
		return cover.KindCreature, false
	}
}

func parseDirection(label string) (cover.Direction, bool) {
	switch label {
	case "":
		return cover.DirNone, true
	case "left":
		return cover.DirLeft, true
	case "right":
		return cover.DirRight, true
	default:
		return cover.DirNone, false
	}
}

func parseDoor(label string) (cover.Door, bool) {
	switch label {
	case "":
		return cover.DoorNone, true
	case "closed":
		return cover.DoorClosed, true
	case "open":
		return cover.DoorOpen, true
	case "locked":
		return cover.DoorLocked, true
	default:
		return cover.DoorNone, false
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
