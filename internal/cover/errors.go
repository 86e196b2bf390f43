package cover

import "errors"

// Engine-internal failures. The public detector entry points map every error
// to the fail-soft result (None); these sentinels keep the internal stages
// inspectable in tests.
var (
	// ErrGeometryUnavailable signals that the snapshot geometry cannot be
	// evaluated (for example a degenerate attacker-target pair).
	ErrGeometryUnavailable = errors.New("scene geometry unavailable")
)
