// Package server exposes the cover engine over an HTTP JSON API: evaluation,
// scene CRUD, stored evaluation queries, and a websocket feed of results.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/defilade/internal/cover"
	apperrors "github.com/louisbranch/defilade/internal/platform/errors"
	"github.com/louisbranch/defilade/internal/scene/grant"
	"github.com/louisbranch/defilade/internal/storage"
)

// maxBodyBytes bounds request bodies; scene documents stay well under this.
const maxBodyBytes = 1 << 20

// Config wires the server's collaborators. Scenes and Evaluations may be nil
// when the server runs without a store; store-backed endpoints then report
// storage as unavailable.
type Config struct {
	Scenes      storage.SceneStore
	Evaluations storage.EvaluationStore
	Grants      grant.Config
	Engine      cover.Config
	Now         func() time.Time
}

// Server is the HTTP service state shared across handlers.
type Server struct {
	scenes storage.SceneStore
	evals  storage.EvaluationStore
	grants grant.Config
	engine cover.Config
	hub    *feedHub
	now    func() time.Time
}

// New builds a server from its collaborators.
func New(cfg Config) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		scenes: cfg.Scenes,
		evals:  cfg.Evaluations,
		grants: cfg.Grants,
		engine: cfg.Engine,
		hub:    newFeedHub(),
		now:    now,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/eval", s.handleEval)
	mux.HandleFunc("PUT /v1/scenes/{id}", s.handlePutScene)
	mux.HandleFunc("GET /v1/scenes/{id}", s.handleGetScene)
	mux.HandleFunc("DELETE /v1/scenes/{id}", s.handleDeleteScene)
	mux.HandleFunc("GET /v1/scenes", s.handleListScenes)
	mux.HandleFunc("GET /v1/evaluations", s.handleListEvaluations)
	mux.Handle("GET /ws", websocket.Handler(s.handleWS))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	body := errorBody{Code: string(code), Message: err.Error()}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Details = appErr.Metadata
	}
	writeJSON(w, code.HTTPStatus(), body)
}
