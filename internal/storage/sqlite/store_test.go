package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/defilade/internal/geo"
	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/storage"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "defilade.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func demoScene(id string) scene.Scene {
	return scene.Scene{
		ID:       id,
		Name:     "Demo",
		GridSize: 5,
		Tokens: []scene.Token{
			{ID: "archer", X: 0, Y: 0, Size: "medium"},
			{ID: "raider", X: 97.5, Y: 0, Size: "medium"},
		},
		Walls: []scene.Wall{
			{X1: 50, Y1: -20, X2: 50, Y2: 20, BlocksSight: true},
		},
	}
}

func TestSceneRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	doc := demoScene("scene-1")
	if err := store.PutScene(ctx, doc); err != nil {
		t.Fatalf("PutScene() error: %v", err)
	}

	got, err := store.GetScene(ctx, "scene-1")
	if err != nil {
		t.Fatalf("GetScene() error: %v", err)
	}
	if got.Name != doc.Name || got.GridSize != doc.GridSize {
		t.Fatalf("scene header = %q/%v, want %q/%v", got.Name, got.GridSize, doc.Name, doc.GridSize)
	}
	if len(got.Tokens) != 2 || len(got.Walls) != 1 {
		t.Fatalf("scene holds %d tokens and %d walls, want 2 and 1", len(got.Tokens), len(got.Walls))
	}
	if got.Tokens[1].X != 97.5 {
		t.Fatalf("token x = %v, want 97.5", got.Tokens[1].X)
	}
}

func TestPutSceneUpserts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	doc := demoScene("scene-1")
	if err := store.PutScene(ctx, doc); err != nil {
		t.Fatalf("PutScene() error: %v", err)
	}
	doc.Name = "Renamed"
	doc.Tokens = doc.Tokens[:1]
	if err := store.PutScene(ctx, doc); err != nil {
		t.Fatalf("PutScene() update error: %v", err)
	}

	got, err := store.GetScene(ctx, "scene-1")
	if err != nil {
		t.Fatalf("GetScene() error: %v", err)
	}
	if got.Name != "Renamed" || len(got.Tokens) != 1 {
		t.Fatalf("scene = %q with %d tokens, want Renamed with 1", got.Name, len(got.Tokens))
	}
}

func TestGetSceneNotFound(t *testing.T) {
	store := openStore(t)

	if _, err := store.GetScene(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetScene(missing) = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDeleteScene(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.PutScene(ctx, demoScene("scene-1")); err != nil {
		t.Fatalf("PutScene() error: %v", err)
	}
	if err := store.DeleteScene(ctx, "scene-1"); err != nil {
		t.Fatalf("DeleteScene() error: %v", err)
	}
	if _, err := store.GetScene(ctx, "scene-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetScene() after delete = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DeleteScene(ctx, "scene-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteScene() again = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListScenes(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	}
	idx := 0
	store.now = func() time.Time {
		when := times[idx%len(times)]
		idx++
		return when
	}

	if err := store.PutScene(ctx, demoScene("older")); err != nil {
		t.Fatalf("PutScene() error: %v", err)
	}
	if err := store.PutScene(ctx, demoScene("newer")); err != nil {
		t.Fatalf("PutScene() error: %v", err)
	}

	infos, err := store.ListScenes(ctx)
	if err != nil {
		t.Fatalf("ListScenes() error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d scenes, want 2", len(infos))
	}
	if infos[0].ID != "newer" {
		t.Fatalf("first listed scene = %q, want %q", infos[0].ID, "newer")
	}
	if infos[0].Tokens != 2 || infos[0].Walls != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", infos[0].Tokens, infos[0].Walls)
	}
}

func TestEvaluationAppendAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	evals := []storage.Evaluation{
		{
			ID: "e1", SceneID: "scene-1", AttackerID: "archer", TargetID: "raider",
			Mode: "size_differential", WallLevel: "standard", TokenLevel: "lesser",
			Level: "standard", Duration: 120 * time.Microsecond, CreatedAt: base,
		},
		{
			ID: "e2", SceneID: "scene-1", TargetID: "ogre",
			Origin: &geo.Point{X: 0, Y: 10},
			Mode:   "coverage", WallLevel: "none", TokenLevel: "none",
			Level: "none", CreatedAt: base.Add(time.Minute),
		},
		{
			ID: "e3", SceneID: "scene-2", AttackerID: "archer", TargetID: "raider",
			Mode: "tactical", WallLevel: "none", TokenLevel: "greater",
			Level: "greater", CreatedAt: base.Add(2 * time.Minute),
		},
	}
	for _, eval := range evals {
		if err := store.AppendEvaluation(ctx, eval); err != nil {
			t.Fatalf("AppendEvaluation(%s) error: %v", eval.ID, err)
		}
	}

	t.Run("unfiltered newest first", func(t *testing.T) {
		got, err := store.ListEvaluations(ctx, "", 0)
		if err != nil {
			t.Fatalf("ListEvaluations() error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("listed %d evaluations, want 3", len(got))
		}
		if got[0].ID != "e3" || got[2].ID != "e1" {
			t.Fatalf("order = %s..%s, want e3..e1", got[0].ID, got[2].ID)
		}
	})

	t.Run("filter by scene", func(t *testing.T) {
		got, err := store.ListEvaluations(ctx, `scene_id = "scene-1"`, 0)
		if err != nil {
			t.Fatalf("ListEvaluations() error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("listed %d evaluations, want 2", len(got))
		}
	})

	t.Run("filter by level and time", func(t *testing.T) {
		got, err := store.ListEvaluations(ctx,
			`level != "none" AND ts >= timestamp("2026-03-01T12:01:00Z")`, 0)
		if err != nil {
			t.Fatalf("ListEvaluations() error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "e3" {
			t.Fatalf("listed %v, want only e3", got)
		}
	})

	t.Run("origin round trip", func(t *testing.T) {
		got, err := store.ListEvaluations(ctx, `mode = "coverage"`, 0)
		if err != nil {
			t.Fatalf("ListEvaluations() error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("listed %d evaluations, want 1", len(got))
		}
		if got[0].Origin == nil || got[0].Origin.X != 0 || got[0].Origin.Y != 10 {
			t.Fatalf("origin = %+v, want (0, 10)", got[0].Origin)
		}
		if got[0].AttackerID != "" {
			t.Fatalf("attacker id = %q, want empty for a point evaluation", got[0].AttackerID)
		}
	})

	t.Run("page size", func(t *testing.T) {
		got, err := store.ListEvaluations(ctx, "", 2)
		if err != nil {
			t.Fatalf("ListEvaluations() error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("listed %d evaluations, want 2", len(got))
		}
	})

	t.Run("bad filter", func(t *testing.T) {
		if _, err := store.ListEvaluations(ctx, `flavor = "smoky"`, 0); err == nil {
			t.Fatal("ListEvaluations() succeeded with an unknown field, want error")
		}
	})
}

func TestAppendEvaluationValidation(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.AppendEvaluation(ctx, storage.Evaluation{TargetID: "t"}); err == nil {
		t.Fatal("AppendEvaluation() without an id succeeded, want error")
	}
	if err := store.AppendEvaluation(ctx, storage.Evaluation{ID: "e1"}); err == nil {
		t.Fatal("AppendEvaluation() without a target succeeded, want error")
	}
}

func TestOpenValidation(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("Open(\"\") succeeded, want error")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defilade.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	_ = second.Close()
}
