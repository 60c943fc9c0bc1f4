// Package thread exposes conversation thread creation.
package thread

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucafehr/fishbuddy/pkg/utils"
)

// Creator provisions a new assistant thread.
type Creator interface {
	CreateThread(ctx context.Context) (string, error)
}

// Handler serves the thread endpoint.
type Handler struct {
	creator Creator
}

// New creates the thread handler.
func New(creator Creator) *Handler {
	return &Handler{creator: creator}
}

// RegisterRoutes mounts the thread routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/thread", h.handleCreateThread)
}

func (h *Handler) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	threadID, err := h.creator.CreateThread(r.Context())
	if err != nil {
		log.Printf("[thread] create failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create thread")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"thread_id": threadID})
}
