// Package ws serves the chat over a WebSocket as an alternative to SSE.
package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lucafehr/fishbuddy/internal/handler/stream"
)

// Handler upgrades chat requests to a WebSocket connection.
type Handler struct {
	responder stream.Responder
	upgrader  websocket.Upgrader
}

// New creates the websocket chat handler.
func New(responder stream.Responder) *Handler {
	return &Handler{
		responder: responder,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleChat)
}

type inbound struct {
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
	Context  string `json:"context"`
}

type outbound struct {
	Text  string `json:"text,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req inbound
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		if req.ThreadID == "" || req.Message == "" {
			if err := conn.WriteJSON(outbound{Error: "thread_id and message are required"}); err != nil {
				return
			}
			continue
		}
		if req.Context == "" || !json.Valid([]byte(req.Context)) {
			req.Context = "{}"
		}

		err := h.responder.StreamLines(r.Context(), req.ThreadID, req.Message, req.Context, func(line string) error {
			return conn.WriteJSON(outbound{Text: line})
		})
		if err != nil {
			log.Printf("[ws] thread=%s failed: %v", req.ThreadID, err)
			if err := conn.WriteJSON(outbound{Error: "assistant request failed"}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(outbound{Done: true}); err != nil {
			return
		}
	}
}
