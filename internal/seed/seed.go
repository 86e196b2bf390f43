// Package seed populates a scene store with generated tactical scenes for
// demos and local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/storage"
)

// Preset selects a generation profile.
type Preset string

const (
	// PresetDemo stores one handcrafted courtyard scene.
	PresetDemo Preset = "demo"
	// PresetSiege stores a walled keep under assault.
	PresetSiege Preset = "siege"
	// PresetWarcamp stores scattered camps with many tokens and few walls.
	PresetWarcamp Preset = "warcamp"
)

// Presets lists every known preset.
func Presets() []Preset {
	return []Preset{PresetDemo, PresetSiege, PresetWarcamp}
}

// ValidatePreset reports whether the preset is known.
func ValidatePreset(preset Preset) error {
	for _, p := range Presets() {
		if preset == p {
			return nil
		}
	}
	return fmt.Errorf("unknown preset %q (valid presets: demo, siege, warcamp)", preset)
}

// Config controls seed generation.
type Config struct {
	Preset  Preset
	Seed    int64
	Scenes  int
	Verbose bool
	Logger  *log.Logger
}

// DefaultConfig returns default seed configuration.
func DefaultConfig() Config {
	return Config{Preset: PresetDemo}
}

// Generator writes preset scenes to a store.
type Generator struct {
	cfg    Config
	store  storage.SceneStore
	rng    *rand.Rand
	logger *log.Logger
}

// New prepares a generator. A zero seed picks a time-based one; any other
// value makes the output reproducible.
func New(cfg Config, store storage.SceneStore) (*Generator, error) {
	if store == nil {
		return nil, errors.New("scene store is required")
	}
	if cfg.Preset == "" {
		cfg.Preset = PresetDemo
	}
	if err := ValidatePreset(cfg.Preset); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		cfg:    cfg,
		store:  store,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}, nil
}

// Run generates and stores the preset's scenes.
func (g *Generator) Run(ctx context.Context) error {
	docs, err := g.generate()
	if err != nil {
		return err
	}
	for _, doc := range docs {
		doc.Normalize()
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("generated scene %q is invalid: %w", doc.ID, err)
		}
		if err := g.store.PutScene(ctx, doc); err != nil {
			return fmt.Errorf("store scene %q: %w", doc.ID, err)
		}
		g.logf("seed: stored scene %s (%d tokens, %d walls)", doc.ID, len(doc.Tokens), len(doc.Walls))
	}
	return nil
}

func (g *Generator) generate() ([]scene.Scene, error) {
	switch g.cfg.Preset {
	case PresetDemo:
		return []scene.Scene{demoScene()}, nil
	case PresetSiege:
		return g.siegeScenes(), nil
	case PresetWarcamp:
		return g.warcampScenes(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q", g.cfg.Preset)
	}
}

func (g *Generator) sceneCount(fallback int) int {
	if g.cfg.Scenes > 0 {
		return g.cfg.Scenes
	}
	return fallback
}

func (g *Generator) logf(format string, args ...any) {
	if !g.cfg.Verbose || g.logger == nil {
		return
	}
	g.logger.Printf(format, args...)
}
