// Package storage defines persistence contracts for scene documents and
// evaluation audit records.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/defilade/internal/geo"
	"github.com/louisbranch/defilade/internal/scene"
)

// ErrNotFound indicates a requested scene is missing.
var ErrNotFound = errors.New("record not found")

// SceneInfo is a listing row: the document header without the payload.
type SceneInfo struct {
	ID        string
	Name      string
	GridSize  float64
	Tokens    int
	Walls     int
	UpdatedAt time.Time
}

// Evaluation is one audited cover resolution. Levels travel as lowercase
// labels; Origin is set for from-point evaluations instead of AttackerID.
type Evaluation struct {
	ID         string
	SceneID    string
	AttackerID string
	TargetID   string
	Origin     *geo.Point
	Mode       string
	WallLevel  string
	TokenLevel string
	Level      string
	Duration   time.Duration
	CreatedAt  time.Time
}

// SceneStore persists scene documents. Put is an upsert keyed by scene id.
type SceneStore interface {
	PutScene(ctx context.Context, doc scene.Scene) error
	GetScene(ctx context.Context, id string) (scene.Scene, error)
	DeleteScene(ctx context.Context, id string) error
	ListScenes(ctx context.Context) ([]SceneInfo, error)
}

// EvaluationStore appends and queries evaluation audit rows. List accepts an
// AIP-160 filter expression over scene_id, attacker_id, target_id, mode,
// level, and ts.
type EvaluationStore interface {
	AppendEvaluation(ctx context.Context, eval Evaluation) error
	ListEvaluations(ctx context.Context, filter string, pageSize int) ([]Evaluation, error)
}
