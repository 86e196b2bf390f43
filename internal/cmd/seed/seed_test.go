package seed

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/defilade/internal/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Preset != "demo" {
		t.Fatalf("preset = %q, want demo", cfg.Preset)
	}
	if cfg.DBPath != "defilade.db" {
		t.Fatalf("db path = %q, want defilade.db", cfg.DBPath)
	}
	if cfg.WaitAddr != "" {
		t.Fatalf("wait addr = %q, want disabled by default", cfg.WaitAddr)
	}
}

func TestRunList(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), Config{List: true}, &out, nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for _, preset := range []string{"demo", "siege", "warcamp"} {
		if !strings.Contains(out.String(), preset) {
			t.Errorf("listing is missing preset %q", preset)
		}
	}
}

func TestRunSeedsStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")

	var out bytes.Buffer
	err := Run(context.Background(), Config{
		DBPath: dbPath,
		Preset: "demo",
		Seed:   1,
	}, &out, nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()

	doc, err := store.GetScene(context.Background(), "demo-courtyard")
	if err != nil {
		t.Fatalf("load seeded scene: %v", err)
	}
	if len(doc.Tokens) != 5 {
		t.Fatalf("seeded scene has %d tokens, want 5", len(doc.Tokens))
	}
}

func TestRunRejectsUnknownPreset(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	err := Run(context.Background(), Config{DBPath: dbPath, Preset: "volcano"}, nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown preset")
	}
}
