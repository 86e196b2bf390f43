package cover

// Strategy converts a filtered blocker set into a token cover level. One
// implementing type exists per Mode; strategyFor is the single place the
// mode enum is dispatched.
type Strategy interface {
	Evaluate(snap Snapshot, attacker, target Token, blockers []Token) (Level, error)
}

// strategyFor returns the strategy implementation for the mode.
func strategyFor(cfg Config) Strategy {
	switch cfg.Mode {
	case ModeTactical:
		return tacticalStrategy{}
	case ModeCoverage:
		return coverageStrategy{}
	case ModeSampled3D:
		return sampled3DStrategy{}
	default:
		return sizeDifferentialStrategy{}
	}
}

// sizeRankUpgrade reports whether a blocker's size rank exceeds both the
// attacker's and the target's by at least two, granting Standard instead of
// Lesser.
func sizeRankUpgrade(blocker, attacker, target Token) bool {
	br := blocker.Size.Rank()
	return br-attacker.Size.Rank() >= 2 && br-target.Size.Rank() >= 2
}
