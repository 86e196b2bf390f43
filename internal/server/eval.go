package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/defilade/internal/cover"
	"github.com/louisbranch/defilade/internal/geo"
	"github.com/louisbranch/defilade/internal/platform/id"
	"github.com/louisbranch/defilade/internal/platform/timeouts"
	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/storage"

	apperrors "github.com/louisbranch/defilade/internal/platform/errors"
)

var tracer = otel.Tracer("github.com/louisbranch/defilade/internal/server")

// EvalConfig carries per-request engine overrides. Nil fields keep the
// server's configured defaults; out-of-range tunables are rejected rather
// than clamped at this boundary.
type EvalConfig struct {
	Mode               string   `json:"mode,omitempty"`
	AllowGreater       *bool    `json:"allow_greater,omitempty"`
	StandardThreshold  *float64 `json:"standard_threshold,omitempty"`
	GreaterThreshold   *float64 `json:"greater_threshold,omitempty"`
	SamplesPerEdge     *int     `json:"samples_per_edge,omitempty"`
	EdgeGrazeWeight    *float64 `json:"edge_graze_weight,omitempty"`
	ElevationTolerance *float64 `json:"elevation_tolerance,omitempty"`

	IgnoreUndetected   *bool `json:"ignore_undetected,omitempty"`
	IgnoreDead         *bool `json:"ignore_dead,omitempty"`
	IgnoreAllies       *bool `json:"ignore_allies,omitempty"`
	AllowProne         *bool `json:"allow_prone,omitempty"`
	NearestBlockerOnly *bool `json:"nearest_blocker_only,omitempty"`
}

// EvalRequest is the POST /v1/eval body. The scene comes inline or by
// reference; the attacker is a token id or a bare origin point.
type EvalRequest struct {
	SceneID    string       `json:"scene_id,omitempty"`
	Scene      *scene.Scene `json:"scene,omitempty"`
	AttackerID string       `json:"attacker_id,omitempty"`
	TargetID   string       `json:"target_id"`
	Origin     *geo.Point   `json:"origin,omitempty"`
	Config     *EvalConfig  `json:"config,omitempty"`
}

// EvalResponse reports the per-source breakdown of one evaluation.
type EvalResponse struct {
	SceneID    string     `json:"scene_id,omitempty"`
	AttackerID string     `json:"attacker_id,omitempty"`
	TargetID   string     `json:"target_id"`
	Origin     *geo.Point `json:"origin,omitempty"`
	Mode       string     `json:"mode"`
	WallLevel  string     `json:"wall_level"`
	TokenLevel string     `json:"token_level"`
	Level      string     `json:"level"`
	Degraded   bool       `json:"degraded,omitempty"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Request)
	defer cancel()

	var req EvalRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeSceneInvalid, "request body is not valid JSON", err))
		return
	}

	doc, err := s.resolveScene(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	cfg, err := s.resolveConfig(req.Config)
	if err != nil {
		writeError(w, err)
		return
	}

	target, ok := doc.Find(req.TargetID)
	if !ok {
		writeError(w, apperrors.WithMetadata(apperrors.CodeTokenNotInScene, "target is not in the scene",
			map[string]string{"TokenID": req.TargetID}))
		return
	}

	var attacker cover.Token
	switch {
	case req.Origin != nil:
		attacker = cover.PointToken(*req.Origin)
	case req.AttackerID != "":
		attacker, ok = doc.Find(req.AttackerID)
		if !ok {
			writeError(w, apperrors.WithMetadata(apperrors.CodeTokenNotInScene, "attacker is not in the scene",
				map[string]string{"TokenID": req.AttackerID}))
			return
		}
	default:
		writeError(w, apperrors.New(apperrors.CodeSceneInvalid, "attacker_id or origin is required"))
		return
	}

	resp := s.evaluate(ctx, doc, cfg, attacker, target, req)
	s.hub.broadcast(resp)
	writeJSON(w, http.StatusOK, resp)
}

// evaluate runs the engine and records the audit row. Engine failure is not a
// client error: the result degrades to the fail-soft level with HTTP 200.
func (s *Server) evaluate(ctx context.Context, doc *scene.Scene, cfg cover.Config, attacker, target cover.Token, req EvalRequest) EvalResponse {
	ctx, span := tracer.Start(ctx, "cover.evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("cover.mode", cfg.Mode.String()),
		attribute.String("cover.target_id", target.ID),
	)

	snap := doc.ToCover()
	detector := cover.NewDetector(cfg)

	start := s.now()
	breakdown, err := detector.Evaluate(snap, attacker, target)
	elapsed := s.now().Sub(start)

	resp := EvalResponse{
		SceneID:    doc.ID,
		AttackerID: req.AttackerID,
		TargetID:   target.ID,
		Origin:     req.Origin,
		Mode:       cfg.Mode.String(),
	}
	if err != nil {
		level := detector.BetweenTokens(snap, attacker, target)
		resp.WallLevel = cover.None.String()
		resp.TokenLevel = cover.None.String()
		resp.Level = level.String()
		resp.Degraded = true
		log.Printf("server: evaluation degraded scene=%q target=%q err=%v", doc.ID, target.ID, err)
	} else {
		resp.WallLevel = breakdown.Wall.String()
		resp.TokenLevel = breakdown.Token.String()
		resp.Level = breakdown.Final.String()
	}

	s.appendAudit(ctx, resp, elapsed)
	return resp
}

// appendAudit records the evaluation best-effort; failures are logged and
// never surface to the client.
func (s *Server) appendAudit(ctx context.Context, resp EvalResponse, elapsed time.Duration) {
	if s.evals == nil {
		return
	}
	evalID, err := id.New()
	if err != nil {
		log.Printf("server: evaluation id: %v", err)
		return
	}
	err = s.evals.AppendEvaluation(ctx, storage.Evaluation{
		ID:         evalID,
		SceneID:    resp.SceneID,
		AttackerID: resp.AttackerID,
		TargetID:   resp.TargetID,
		Origin:     resp.Origin,
		Mode:       resp.Mode,
		WallLevel:  resp.WallLevel,
		TokenLevel: resp.TokenLevel,
		Level:      resp.Level,
		Duration:   elapsed,
		CreatedAt:  s.now(),
	})
	if err != nil {
		log.Printf("server: append evaluation scene=%q target=%q err=%v", resp.SceneID, resp.TargetID, err)
	}
}

// resolveScene returns the normalized scene document for the request, either
// inline or loaded from the store.
func (s *Server) resolveScene(ctx context.Context, req *EvalRequest) (*scene.Scene, error) {
	if req.Scene != nil {
		doc := *req.Scene
		doc.Normalize()
		if err := doc.Validate(); err != nil {
			if errors.Is(err, scene.ErrTooLarge) {
				return nil, apperrors.Wrap(apperrors.CodeSceneTooLarge, "scene exceeds size limits", err)
			}
			return nil, apperrors.Wrap(apperrors.CodeSceneInvalid, "scene is invalid", err)
		}
		return &doc, nil
	}
	if req.SceneID == "" {
		return nil, apperrors.New(apperrors.CodeSceneIDMissing, "scene or scene_id is required")
	}
	if s.scenes == nil {
		return nil, apperrors.New(apperrors.CodeStorageUnavailable, "scene storage is not configured")
	}
	doc, err := s.scenes.GetScene(ctx, req.SceneID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.WithMetadata(apperrors.CodeSceneNotFound, "scene not found",
				map[string]string{"SceneID": req.SceneID})
		}
		return nil, apperrors.Wrap(apperrors.CodeStorageUnavailable, "load scene", err)
	}
	doc.Normalize()
	return &doc, nil
}

// resolveConfig layers request overrides onto the server's engine defaults.
func (s *Server) resolveConfig(overrides *EvalConfig) (cover.Config, error) {
	cfg := s.engine
	if overrides == nil {
		return cfg, nil
	}
	if overrides.Mode != "" {
		mode, ok := cover.ParseMode(overrides.Mode)
		if !ok {
			return cover.Config{}, apperrors.WithMetadata(apperrors.CodeModeInvalid, "unknown evaluation mode",
				map[string]string{"Mode": overrides.Mode})
		}
		cfg.Mode = mode
	}
	if overrides.AllowGreater != nil {
		cfg.Walls.AllowGreater = *overrides.AllowGreater
	}
	if overrides.StandardThreshold != nil {
		if *overrides.StandardThreshold < 0 || *overrides.StandardThreshold > 100 {
			return cover.Config{}, apperrors.New(apperrors.CodeThresholdInvalid, "standard_threshold must be in [0, 100]")
		}
		cfg.Walls.StandardThreshold = *overrides.StandardThreshold
	}
	if overrides.GreaterThreshold != nil {
		if *overrides.GreaterThreshold < 0 || *overrides.GreaterThreshold > 100 {
			return cover.Config{}, apperrors.New(apperrors.CodeThresholdInvalid, "greater_threshold must be in [0, 100]")
		}
		cfg.Walls.GreaterThreshold = *overrides.GreaterThreshold
	}
	if cfg.Walls.GreaterThreshold < cfg.Walls.StandardThreshold {
		return cover.Config{}, apperrors.New(apperrors.CodeThresholdInvalid, "greater_threshold must be >= standard_threshold")
	}
	if overrides.SamplesPerEdge != nil {
		cfg.Walls.SamplesPerEdge = *overrides.SamplesPerEdge
	}
	if overrides.EdgeGrazeWeight != nil {
		cfg.Walls.EdgeGrazeWeight = *overrides.EdgeGrazeWeight
	}
	if overrides.ElevationTolerance != nil {
		cfg.ElevationTolerance = *overrides.ElevationTolerance
	}
	if overrides.IgnoreUndetected != nil {
		cfg.Policy.IgnoreUndetected = *overrides.IgnoreUndetected
	}
	if overrides.IgnoreDead != nil {
		cfg.Policy.IgnoreDead = *overrides.IgnoreDead
	}
	if overrides.IgnoreAllies != nil {
		cfg.Policy.IgnoreAllies = *overrides.IgnoreAllies
	}
	if overrides.AllowProne != nil {
		cfg.Policy.AllowProne = *overrides.AllowProne
	}
	if overrides.NearestBlockerOnly != nil {
		cfg.Policy.NearestBlockerOnly = *overrides.NearestBlockerOnly
	}
	return cfg, nil
}
