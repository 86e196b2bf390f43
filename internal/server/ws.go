package server

import (
	"encoding/json"
	"io"
	"sync"

	"golang.org/x/net/websocket"
)

// wsPeer serializes frame writes to one websocket connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *wsPeer) writeFrame(frame any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// feedHub fans evaluation results out to subscribed websocket observers.
// Peers that fail a write are dropped.
type feedHub struct {
	mu    sync.Mutex
	peers map[*wsPeer]struct{}
}

func newFeedHub() *feedHub {
	return &feedHub{peers: make(map[*wsPeer]struct{})}
}

func (h *feedHub) join(peer *wsPeer) {
	h.mu.Lock()
	h.peers[peer] = struct{}{}
	h.mu.Unlock()
}

func (h *feedHub) leave(peer *wsPeer) {
	h.mu.Lock()
	delete(h.peers, peer)
	h.mu.Unlock()
}

func (h *feedHub) subscribers() []*wsPeer {
	h.mu.Lock()
	defer h.mu.Unlock()
	peers := make([]*wsPeer, 0, len(h.peers))
	for peer := range h.peers {
		peers = append(peers, peer)
	}
	return peers
}

// broadcast sends one evaluation result to every subscriber.
func (h *feedHub) broadcast(resp EvalResponse) {
	frame := feedFrame{Type: "evaluation", Evaluation: resp}
	for _, peer := range h.subscribers() {
		if err := peer.writeFrame(frame); err != nil {
			h.leave(peer)
		}
	}
}

// feedFrame is one JSON message on the websocket feed.
type feedFrame struct {
	Type       string       `json:"type"`
	Evaluation EvalResponse `json:"evaluation"`
}

// handleWS subscribes a connection to the evaluation feed until the client
// disconnects. The feed is one-way; inbound frames are drained and ignored.
func (s *Server) handleWS(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	peer := &wsPeer{encoder: json.NewEncoder(conn)}
	s.hub.join(peer)
	defer s.hub.leave(peer)

	_, _ = io.Copy(io.Discard, conn)
}
