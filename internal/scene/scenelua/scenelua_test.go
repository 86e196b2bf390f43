package scenelua

import (
	"os"
	"path/filepath"
	"testing"
)

const courtyard = `
local s = Scene.new("courtyard")
s:grid(5)
s:wall{x1 = 50, y1 = -20, x2 = 50, y2 = 20}
s:wall{x1 = 60, y1 = 0, x2 = 70, y2 = 0, door = "open", blocks_sight = true}
s:token{id = "archer", x = 0, y = 0, size = "medium"}
s:token{id = "raider", x = 97.5, y = 0, elevation = 0}
s:token{id = "ogre", x = 50, y = 30, size = "huge", allegiance = "raiders"}
s:expect{attacker = "archer", target = "raider", level = "standard"}
s:expect{origin = {x = 0, y = 10}, target = "ogre", mode = "coverage", level = "none", name = "flank"}
return s
`

func TestLoadBuildsSceneAndExpectations(t *testing.T) {
	script, err := Load(courtyard)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	s := script.Scene
	if s.Name != "courtyard" {
		t.Fatalf("name = %q, want %q", s.Name, "courtyard")
	}
	if s.GridSize != 5 {
		t.Fatalf("grid = %v, want 5", s.GridSize)
	}
	if len(s.Tokens) != 3 || len(s.Walls) != 2 {
		t.Fatalf("scene holds %d tokens and %d walls, want 3 and 2", len(s.Tokens), len(s.Walls))
	}
	if !s.Walls[0].BlocksSight {
		t.Fatal("walls default to sight-blocking")
	}
	if s.Walls[1].Door != "open" {
		t.Fatalf("door = %q, want %q", s.Walls[1].Door, "open")
	}
	if s.Tokens[2].Allegiance != "raiders" {
		t.Fatalf("allegiance = %q, want %q", s.Tokens[2].Allegiance, "raiders")
	}

	if len(script.Expectations) != 2 {
		t.Fatalf("expectations = %d, want 2", len(script.Expectations))
	}
	first := script.Expectations[0]
	if first.AttackerID != "archer" || first.TargetID != "raider" || first.Level != "standard" {
		t.Fatalf("unexpected first expectation: %+v", first)
	}
	second := script.Expectations[1]
	if second.Origin == nil || second.Origin.X != 0 || second.Origin.Y != 10 {
		t.Fatalf("origin = %+v, want (0, 10)", second.Origin)
	}
	if second.Mode != "coverage" || second.Name != "flank" {
		t.Fatalf("unexpected second expectation: %+v", second)
	}
}

func TestLoadNormalizesScene(t *testing.T) {
	script, err := Load(`
local s = Scene.new()
s:token{id = "a", size = "colossal"}
return s
`)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := script.Scene.Tokens[0].Size; got != "medium" {
		t.Fatalf("size = %q, want %q after normalization", got, "medium")
	}
	if script.Scene.GridSize <= 0 {
		t.Fatalf("grid = %v, want defaulted", script.Scene.GridSize)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax error", `local s = Scene.new(`},
		{"wrong return", `return 42`},
		{"no return", `local s = Scene.new()`},
		{"token without id", `local s = Scene.new() s:token{x = 1} return s`},
		{"expect without level", `local s = Scene.new() s:token{id = "a"} s:expect{attacker = "a", target = "a"} return s`},
		{"expect without target", `local s = Scene.new() s:expect{attacker = "a", level = "none"} return s`},
		{"duplicate token ids", `local s = Scene.new() s:token{id = "a"} s:token{id = "a"} return s`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.source); err == nil {
				t.Fatal("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.lua")
	if err := os.WriteFile(path, []byte(courtyard), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	script, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if script.Scene.Name != "courtyard" {
		t.Fatalf("name = %q, want %q", script.Scene.Name, "courtyard")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("LoadFile(missing) succeeded, want error")
	}
}
