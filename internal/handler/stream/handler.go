// Package stream serves assistant replies over Server-Sent Events.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lucafehr/fishbuddy/pkg/utils"
)

// Responder produces the assistant reply as a sequence of lines.
type Responder interface {
	StreamLines(ctx context.Context, threadID, message, contextJSON string, emit func(line string) error) error
}

// Handler serves the SSE chat endpoint.
type Handler struct {
	responder Responder
}

// New creates the stream handler.
func New(responder Responder) *Handler {
	return &Handler{responder: responder}
}

// RegisterRoutes mounts the chat stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	threadID := strings.TrimSpace(r.URL.Query().Get("thread_id"))
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	contextJSON := r.URL.Query().Get("context")

	// Validate before any SSE bytes go out; after the first chunk the
	// status code is already committed.
	if threadID == "" {
		utils.RespondError(w, http.StatusBadRequest, "thread_id query parameter is required")
		return
	}
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if contextJSON == "" || !json.Valid([]byte(contextJSON)) {
		contextJSON = "{}"
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	log.Printf("[stream] opening chat stream for thread=%s", threadID)

	err := h.responder.StreamLines(r.Context(), threadID, message, contextJSON, func(line string) error {
		utils.SendSSEChunk(w, flusher, map[string]string{"text": line})
		return r.Context().Err()
	})
	if err != nil {
		log.Printf("[stream] thread=%s failed: %v", threadID, err)
		utils.SendSSEChunk(w, flusher, map[string]string{"error": "assistant request failed"})
		return
	}

	utils.SendSSEChunk(w, flusher, map[string]bool{"done": true})
	log.Printf("[stream] chat stream for thread=%s complete", threadID)
}
