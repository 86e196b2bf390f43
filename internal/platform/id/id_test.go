package id

import (
	"strings"
	"testing"
)

func TestNewShape(t *testing.T) {
	value, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("len = %d, want 26", len(value))
	}
	if value != strings.ToLower(value) {
		t.Fatalf("expected lowercase identifier, got %q", value)
	}
	if strings.Contains(value, "=") {
		t.Fatalf("expected no padding, got %q", value)
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		value, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[value] {
			t.Fatalf("duplicate identifier %q", value)
		}
		seen[value] = true
	}
}
