package cover

// Mode selects the token-cover evaluation strategy.
type Mode int

const (
	ModeSizeDifferential Mode = iota
	ModeTactical
	ModeCoverage
	ModeSampled3D
)

// String returns the lowercase mode label used on wire formats and storage.
func (m Mode) String() string {
	switch m {
	case ModeSizeDifferential:
		return "size_differential"
	case ModeTactical:
		return "tactical"
	case ModeCoverage:
		return "coverage"
	case ModeSampled3D:
		return "sampled_3d"
	default:
		return "size_differential"
	}
}

// ParseMode maps a mode label to a Mode. Unknown labels report ok=false.
func ParseMode(label string) (Mode, bool) {
	switch label {
	case "size_differential":
		return ModeSizeDifferential, true
	case "tactical":
		return ModeTactical, true
	case "coverage":
		return ModeCoverage, true
	case "sampled_3d":
		return ModeSampled3D, true
	default:
		return ModeSizeDifferential, false
	}
}

// Policy gates which obstacles may contribute to token cover.
type Policy struct {
	IgnoreUndetected   bool
	IgnoreDead         bool
	IgnoreAllies       bool
	AllowProne         bool
	NearestBlockerOnly bool
}

// WallConfig holds the wall occlusion tunables. The sample density, graze
// weight, and thresholds are gameplay-balance knobs, not derived constants.
type WallConfig struct {
	// SamplesPerEdge is the number of perimeter sample points per footprint
	// edge. Values outside [1, 16] fall back to the default.
	SamplesPerEdge int
	// EdgeGrazeWeight scales coverage when the center sightline is clear,
	// so edge-only grazing does not register as heavy cover.
	EdgeGrazeWeight float64
	// StandardThreshold and GreaterThreshold are coverage percentages in
	// [0, 100] with GreaterThreshold >= StandardThreshold.
	StandardThreshold float64
	GreaterThreshold  float64
	// AllowGreater permits walls to grant Greater; otherwise heavy wall
	// coverage caps at Standard.
	AllowGreater bool
}

// Defaults for engine tunables.
const (
	DefaultGridSize           = 5.0
	DefaultSamplesPerEdge     = 5
	DefaultEdgeGrazeWeight    = 0.3
	DefaultStandardThreshold  = 50.0
	DefaultGreaterThreshold   = 70.0
	DefaultElevationTolerance = 3.0
)

// Coverage-percentage strategy thresholds.
const (
	coverageLesserPct   = 20.0
	coverageStandardPct = 50.0
	coverageGreaterPct  = 70.0
)

// Config is the read-only engine configuration for a batch of evaluations.
type Config struct {
	Mode   Mode
	Policy Policy
	Walls  WallConfig
	// ElevationTolerance widens the coverage strategy's elevation band
	// symmetrically, reflecting its sampling-based nature.
	ElevationTolerance float64
}

// DefaultConfig returns the engine defaults: size-differential mode, wall
// thresholds 50/70, five perimeter samples per edge.
func DefaultConfig() Config {
	return Config{
		Mode: ModeSizeDifferential,
		Walls: WallConfig{
			SamplesPerEdge:    DefaultSamplesPerEdge,
			EdgeGrazeWeight:   DefaultEdgeGrazeWeight,
			StandardThreshold: DefaultStandardThreshold,
			GreaterThreshold:  DefaultGreaterThreshold,
		},
		ElevationTolerance: DefaultElevationTolerance,
	}
}

// normalized clamps tunables into their documented ranges.
func (c Config) normalized() Config {
	if c.Walls.SamplesPerEdge < 1 || c.Walls.SamplesPerEdge > 16 {
		c.Walls.SamplesPerEdge = DefaultSamplesPerEdge
	}
	if c.Walls.EdgeGrazeWeight <= 0 || c.Walls.EdgeGrazeWeight > 1 {
		c.Walls.EdgeGrazeWeight = DefaultEdgeGrazeWeight
	}
	if c.Walls.StandardThreshold < 0 || c.Walls.StandardThreshold > 100 {
		c.Walls.StandardThreshold = DefaultStandardThreshold
	}
	if c.Walls.GreaterThreshold < 0 || c.Walls.GreaterThreshold > 100 {
		c.Walls.GreaterThreshold = DefaultGreaterThreshold
	}
	if c.Walls.GreaterThreshold < c.Walls.StandardThreshold {
		c.Walls.GreaterThreshold = c.Walls.StandardThreshold
	}
	if c.ElevationTolerance < 0 {
		c.ElevationTolerance = DefaultElevationTolerance
	}
	return c
}

// Snapshot is the immutable scene state consumed by one evaluation. The
// engine never reads ambient state; callers assemble a snapshot explicitly.
type Snapshot struct {
	// Grid is the side length of one grid square in scene units.
	// Non-positive values fall back to DefaultGridSize.
	Grid     float64
	Blockers []Token
	Walls    []Wall
}

// gridSize returns the usable grid square size.
func (s Snapshot) gridSize() float64 {
	if s.Grid <= 0 {
		return DefaultGridSize
	}
	return s.Grid
}
