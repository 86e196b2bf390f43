package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/defilade/internal/platform/errors"
	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/scene/grant"
	"github.com/louisbranch/defilade/internal/storage"
)

// SceneListItem is one row of GET /v1/scenes.
type SceneListItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	GridSize  float64 `json:"grid_size"`
	Tokens    int     `json:"tokens"`
	Walls     int     `json:"walls"`
	UpdatedAt string  `json:"updated_at"`
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	sceneID := r.PathValue("id")
	if err := s.authorizeMutation(r, sceneID); err != nil {
		writeError(w, err)
		return
	}
	if s.scenes == nil {
		writeError(w, apperrors.New(apperrors.CodeStorageUnavailable, "scene storage is not configured"))
		return
	}

	var doc scene.Scene
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&doc); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeSceneInvalid, "request body is not valid JSON", err))
		return
	}
	doc.ID = sceneID
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		if errors.Is(err, scene.ErrTooLarge) {
			writeError(w, apperrors.Wrap(apperrors.CodeSceneTooLarge, "scene exceeds size limits", err))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeSceneInvalid, "scene is invalid", err))
		return
	}

	if err := s.scenes.PutScene(r.Context(), doc); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageUnavailable, "store scene", err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeError(w, apperrors.New(apperrors.CodeStorageUnavailable, "scene storage is not configured"))
		return
	}
	sceneID := r.PathValue("id")
	doc, err := s.scenes.GetScene(r.Context(), sceneID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperrors.WithMetadata(apperrors.CodeSceneNotFound, "scene not found",
				map[string]string{"SceneID": sceneID}))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeStorageUnavailable, "load scene", err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	sceneID := r.PathValue("id")
	if err := s.authorizeMutation(r, sceneID); err != nil {
		writeError(w, err)
		return
	}
	if s.scenes == nil {
		writeError(w, apperrors.New(apperrors.CodeStorageUnavailable, "scene storage is not configured"))
		return
	}
	if err := s.scenes.DeleteScene(r.Context(), sceneID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperrors.WithMetadata(apperrors.CodeSceneNotFound, "scene not found",
				map[string]string{"SceneID": sceneID}))
			return
		}
		writeError(w, apperrors.Wrap(apperrors.CodeStorageUnavailable, "delete scene", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeError(w, apperrors.New(apperrors.CodeStorageUnavailable, "scene storage is not configured"))
		return
	}
	infos, err := s.scenes.ListScenes(r.Context())
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeStorageUnavailable, "list scenes", err))
		return
	}
	items := make([]SceneListItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, SceneListItem{
			ID:        info.ID,
			Name:      info.Name,
			GridSize:  info.GridSize,
			Tokens:    info.Tokens,
			Walls:     info.Walls,
			UpdatedAt: info.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": items})
}

// EvaluationListItem is one row of GET /v1/evaluations.
type EvaluationListItem struct {
	ID         string  `json:"id"`
	SceneID    string  `json:"scene_id,omitempty"`
	AttackerID string  `json:"attacker_id,omitempty"`
	TargetID   string  `json:"target_id"`
	Mode       string  `json:"mode"`
	WallLevel  string  `json:"wall_level"`
	TokenLevel string  `json:"token_level"`
	Level      string  `json:"level"`
	DurationUS int64   `json:"duration_us"`
	CreatedAt  string  `json:"created_at"`
	OriginX    float64 `json:"origin_x,omitempty"`
	OriginY    float64 `json:"origin_y,omitempty"`
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.evals == nil {
		writeError(w, apperrors.New(apperrors.CodeStorageUnavailable, "evaluation storage is not configured"))
		return
	}
	filter := r.URL.Query().Get("filter")
	pageSize := 0
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, apperrors.New(apperrors.CodeFilterInvalid, "page_size must be a non-negative integer"))
			return
		}
		pageSize = parsed
	}

	evals, err := s.evals.ListEvaluations(r.Context(), filter, pageSize)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeFilterInvalid, "list evaluations", err))
		return
	}
	items := make([]EvaluationListItem, 0, len(evals))
	for _, eval := range evals {
		item := EvaluationListItem{
			ID:         eval.ID,
			SceneID:    eval.SceneID,
			AttackerID: eval.AttackerID,
			TargetID:   eval.TargetID,
			Mode:       eval.Mode,
			WallLevel:  eval.WallLevel,
			TokenLevel: eval.TokenLevel,
			Level:      eval.Level,
			DurationUS: eval.Duration.Microseconds(),
			CreatedAt:  eval.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		}
		if eval.Origin != nil {
			item.OriginX = eval.Origin.X
			item.OriginY = eval.Origin.Y
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"evaluations": items})
}

// authorizeMutation enforces the scene grant on mutating endpoints when grant
// verification is configured.
func (s *Server) authorizeMutation(r *http.Request, sceneID string) error {
	if !s.grants.Enabled() {
		return nil
	}
	token := bearerToken(r)
	_, err := grant.Verify(token, sceneID, s.grants)
	return err
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
