package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "defilade.db" {
		t.Fatalf("db path = %q, want defilade.db", cfg.DBPath)
	}
	if cfg.Mode != "size_differential" {
		t.Fatalf("mode = %q, want size_differential", cfg.Mode)
	}
}

func TestParseConfigFlagOverride(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-db", "scenes.db", "-allow-greater"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "scenes.db" {
		t.Fatalf("db path = %q, want scenes.db", cfg.DBPath)
	}
	if !cfg.AllowGreater {
		t.Fatal("allow greater flag was not applied")
	}
}
