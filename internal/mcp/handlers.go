package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/defilade/internal/cover"
	"github.com/louisbranch/defilade/internal/geo"
	"github.com/louisbranch/defilade/internal/platform/id"
	"github.com/louisbranch/defilade/internal/platform/timeouts"
	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/storage"
)

// CoverBetweenTokensHandler resolves cover between two tokens of a stored
// scene.
func CoverBetweenTokensHandler(deps Deps) mcp.ToolHandlerFor[CoverBetweenTokensInput, CoverResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CoverBetweenTokensInput) (*mcp.CallToolResult, CoverResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeouts.Request)
		defer cancel()

		doc, err := loadScene(runCtx, deps.Scenes, input.SceneID)
		if err != nil {
			return nil, CoverResult{}, err
		}
		attacker, ok := doc.Find(input.AttackerID)
		if !ok {
			return nil, CoverResult{}, fmt.Errorf("attacker %q is not in scene %q", input.AttackerID, doc.ID)
		}
		result, err := resolveCover(runCtx, deps, doc, attacker, input.Mode, input.TargetID)
		if err != nil {
			return nil, CoverResult{}, err
		}
		return nil, result, nil
	}
}

// CoverFromPointHandler resolves cover for a target against a bare origin
// point, for template and area effects with no attacking token.
func CoverFromPointHandler(deps Deps) mcp.ToolHandlerFor[CoverFromPointInput, CoverResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CoverFromPointInput) (*mcp.CallToolResult, CoverResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeouts.Request)
		defer cancel()

		doc, err := loadScene(runCtx, deps.Scenes, input.SceneID)
		if err != nil {
			return nil, CoverResult{}, err
		}
		attacker := cover.PointToken(geo.Point{X: input.X, Y: input.Y})
		result, err := resolveCover(runCtx, deps, doc, attacker, input.Mode, input.TargetID)
		if err != nil {
			return nil, CoverResult{}, err
		}
		return nil, result, nil
	}
}

// SceneGetHandler loads a stored scene.
func SceneGetHandler(deps Deps) mcp.ToolHandlerFor[SceneGetInput, SceneGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneGetInput) (*mcp.CallToolResult, SceneGetResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, timeouts.Request)
		defer cancel()

		doc, err := loadScene(runCtx, deps.Scenes, input.SceneID)
		if err != nil {
			return nil, SceneGetResult{}, err
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, SceneGetResult{}, fmt.Errorf("encode scene %q: %w", doc.ID, err)
		}
		return nil, SceneGetResult{
			ID:       doc.ID,
			Name:     doc.Name,
			GridSize: doc.GridSize,
			Document: string(raw),
		}, nil
	}
}

// ScenePutHandler validates and stores a scene document.
func ScenePutHandler(deps Deps) mcp.ToolHandlerFor[ScenePutInput, ScenePutResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScenePutInput) (*mcp.CallToolResult, ScenePutResult, error) {
		if deps.Scenes == nil {
			return nil, ScenePutResult{}, errors.New("scene storage is not configured")
		}
		if input.SceneID == "" {
			return nil, ScenePutResult{}, errors.New("scene_id is required")
		}

		var doc scene.Scene
		if err := json.Unmarshal([]byte(input.Document), &doc); err != nil {
			return nil, ScenePutResult{}, fmt.Errorf("scene document is not valid JSON: %w", err)
		}
		doc.ID = input.SceneID
		doc.Normalize()
		if err := doc.Validate(); err != nil {
			return nil, ScenePutResult{}, fmt.Errorf("scene document is invalid: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, timeouts.Request)
		defer cancel()
		if err := deps.Scenes.PutScene(runCtx, doc); err != nil {
			return nil, ScenePutResult{}, fmt.Errorf("store scene %q: %w", doc.ID, err)
		}
		return nil, ScenePutResult{
			ID:     doc.ID,
			Tokens: len(doc.Tokens),
			Walls:  len(doc.Walls),
		}, nil
	}
}

// SceneListHandler lists stored scenes.
func SceneListHandler(deps Deps) mcp.ToolHandlerFor[SceneListInput, SceneListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SceneListInput) (*mcp.CallToolResult, SceneListResult, error) {
		if deps.Scenes == nil {
			return nil, SceneListResult{}, errors.New("scene storage is not configured")
		}
		runCtx, cancel := context.WithTimeout(ctx, timeouts.Request)
		defer cancel()

		infos, err := deps.Scenes.ListScenes(runCtx)
		if err != nil {
			return nil, SceneListResult{}, fmt.Errorf("list scenes: %w", err)
		}
		result := SceneListResult{Scenes: make([]SceneSummary, 0, len(infos))}
		for _, info := range infos {
			result.Scenes = append(result.Scenes, SceneSummary{
				ID:       info.ID,
				Name:     info.Name,
				GridSize: info.GridSize,
				Tokens:   info.Tokens,
				Walls:    info.Walls,
			})
		}
		return nil, result, nil
	}
}

// EvaluationListHandler lists recorded evaluations.
func EvaluationListHandler(deps Deps) mcp.ToolHandlerFor[EvaluationListInput, EvaluationListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EvaluationListInput) (*mcp.CallToolResult, EvaluationListResult, error) {
		if deps.Evaluations == nil {
			return nil, EvaluationListResult{}, errors.New("evaluation storage is not configured")
		}
		if input.PageSize < 0 {
			return nil, EvaluationListResult{}, errors.New("page_size must be non-negative")
		}
		runCtx, cancel := context.WithTimeout(ctx, timeouts.Request)
		defer cancel()

		evals, err := deps.Evaluations.ListEvaluations(runCtx, input.Filter, input.PageSize)
		if err != nil {
			return nil, EvaluationListResult{}, fmt.Errorf("list evaluations: %w", err)
		}
		result := EvaluationListResult{Evaluations: make([]EvaluationEntry, 0, len(evals))}
		for _, eval := range evals {
			result.Evaluations = append(result.Evaluations, EvaluationEntry{
				ID:         eval.ID,
				SceneID:    eval.SceneID,
				AttackerID: eval.AttackerID,
				TargetID:   eval.TargetID,
				Mode:       eval.Mode,
				WallLevel:  eval.WallLevel,
				TokenLevel: eval.TokenLevel,
				Level:      eval.Level,
				CreatedAt:  eval.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return nil, result, nil
	}
}

// loadScene fetches and normalizes a stored scene.
func loadScene(ctx context.Context, scenes storage.SceneStore, sceneID string) (*scene.Scene, error) {
	if scenes == nil {
		return nil, errors.New("scene storage is not configured")
	}
	if sceneID == "" {
		return nil, errors.New("scene_id is required")
	}
	doc, err := scenes.GetScene(ctx, sceneID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("scene %q not found", sceneID)
		}
		return nil, fmt.Errorf("load scene %q: %w", sceneID, err)
	}
	doc.Normalize()
	return &doc, nil
}

// resolveCover runs the engine for one attacker/target pair and records the
// audit row. Engine failure degrades to the single-ray level rather than
// failing the tool call.
func resolveCover(ctx context.Context, deps Deps, doc *scene.Scene, attacker cover.Token, mode, targetID string) (CoverResult, error) {
	target, ok := doc.Find(targetID)
	if !ok {
		return CoverResult{}, fmt.Errorf("target %q is not in scene %q", targetID, doc.ID)
	}
	cfg := deps.Engine
	if mode != "" {
		parsed, ok := cover.ParseMode(mode)
		if !ok {
			return CoverResult{}, fmt.Errorf("unknown evaluation mode %q", mode)
		}
		cfg.Mode = parsed
	}

	snap := doc.ToCover()
	detector := cover.NewDetector(cfg)

	start := time.Now()
	breakdown, err := detector.Evaluate(snap, attacker, target)
	elapsed := time.Since(start)

	result := CoverResult{
		SceneID:  doc.ID,
		TargetID: target.ID,
		Mode:     cfg.Mode.String(),
	}
	if err != nil {
		level := detector.BetweenTokens(snap, attacker, target)
		result.WallLevel = cover.None.String()
		result.TokenLevel = cover.None.String()
		result.Level = level.String()
		result.Degraded = true
		log.Printf("mcp: evaluation degraded scene=%q target=%q err=%v", doc.ID, target.ID, err)
	} else {
		result.WallLevel = breakdown.Wall.String()
		result.TokenLevel = breakdown.Token.String()
		result.Level = breakdown.Final.String()
	}

	appendAudit(ctx, deps.Evaluations, attacker, result, elapsed)
	return result, nil
}

// appendAudit records the evaluation best-effort; failures are logged and
// never surface to the MCP client.
func appendAudit(ctx context.Context, evals storage.EvaluationStore, attacker cover.Token, result CoverResult, elapsed time.Duration) {
	if evals == nil {
		return
	}
	evalID, err := id.New()
	if err != nil {
		log.Printf("mcp: evaluation id: %v", err)
		return
	}
	row := storage.Evaluation{
		ID:         evalID,
		SceneID:    result.SceneID,
		AttackerID: attacker.ID,
		TargetID:   result.TargetID,
		Mode:       result.Mode,
		WallLevel:  result.WallLevel,
		TokenLevel: result.TokenLevel,
		Level:      result.Level,
		Duration:   elapsed,
		CreatedAt:  time.Now(),
	}
	if attacker.ID == "" {
		origin := attacker.Center
		row.Origin = &origin
	}
	if err := evals.AppendEvaluation(ctx, row); err != nil {
		log.Printf("mcp: append evaluation scene=%q target=%q err=%v", result.SceneID, result.TargetID, err)
	}
}
