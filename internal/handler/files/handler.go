// Package files exposes upload, list and delete for session attachments.
package files

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucafehr/fishbuddy/internal/model/chat"
	"github.com/lucafehr/fishbuddy/internal/service/assistant"
	"github.com/lucafehr/fishbuddy/pkg/utils"
)

// Uploads above this size are rejected before buffering the whole body.
const maxUploadBytes = 20 << 20

// Store is the session file registry the handler fronts.
type Store interface {
	UploadFile(ctx context.Context, filename string, data []byte) (chat.AttachmentRef, error)
	ListFiles() []chat.AttachmentRef
	DeleteFile(ctx context.Context, fileID string) error
}

// Handler serves the file endpoints.
type Handler struct {
	store Store
}

// New creates the files handler.
func New(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the file routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
	r.Get("/files", h.handleList)
	r.Delete("/files/{fileID}", h.handleDelete)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "file form field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[files] reading upload failed: %v", err)
		utils.RespondError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	ref, err := h.store.UploadFile(r.Context(), header.Filename, data)
	if err != nil {
		log.Printf("[files] upload failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"file_id":  ref.ID,
		"filename": ref.Filename,
		"status":   "uploaded",
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	refs := h.store.ListFiles()
	if refs == nil {
		refs = []chat.AttachmentRef{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"files": refs})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	if err := h.store.DeleteFile(r.Context(), fileID); err != nil {
		if errors.Is(err, assistant.ErrFileNotTracked) {
			utils.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		log.Printf("[files] delete %s failed: %v", fileID, err)
		utils.RespondError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
