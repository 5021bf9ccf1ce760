package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is handled at the router level
		return true
	},
}

// ProgressEvent is pushed to stream subscribers whenever a learner
// saves progress on the subscribed roadmap
type ProgressEvent struct {
	RoadmapID    string    `json:"roadmapId"`
	UserID       string    `json:"userId"`
	Progress     int       `json:"progress"`
	StepProgress int       `json:"stepProgress"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StreamHub fans progress events out to websocket subscribers,
// grouped by roadmap
type StreamHub struct {
	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]struct{}
}

// NewStreamHub creates an empty hub
func NewStreamHub() *StreamHub {
	return &StreamHub{
		subs: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *StreamHub) subscribe(roadmapID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[roadmapID] == nil {
		h.subs[roadmapID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[roadmapID][conn] = struct{}{}
}

func (h *StreamHub) unsubscribe(roadmapID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.subs[roadmapID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subs, roadmapID)
		}
	}
}

// Broadcast sends the event to every subscriber of its roadmap.
// Connections that fail to write are dropped.
func (h *StreamHub) Broadcast(roadmapID string, event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subs[roadmapID] {
		if err := conn.WriteJSON(event); err != nil {
			slog.Warn("dropping stream subscriber", "error", err, "roadmap", roadmapID)
			conn.Close()
			delete(h.subs[roadmapID], conn)
		}
	}
}

// SubscriberCount reports live subscribers for a roadmap
func (h *StreamHub) SubscriberCount(roadmapID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[roadmapID])
}

// handleProgressStream upgrades the connection and streams progress
// events for one roadmap until the client disconnects
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	roadmapID := chi.URLParam(r, "id")
	if roadmapID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "roadmap id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "roadmap", roadmapID)
		return
	}
	defer conn.Close()

	s.hub.subscribe(roadmapID, conn)
	defer s.hub.unsubscribe(roadmapID, conn)

	slog.Info("progress stream opened", "roadmap", roadmapID, "remote_addr", r.RemoteAddr)

	// Read loop: we only care about detecting disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("progress stream error", "error", err, "roadmap", roadmapID)
			}
			break
		}
	}

	slog.Info("progress stream closed", "roadmap", roadmapID, "remote_addr", r.RemoteAddr)
}
