package assistant

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

// UploadFile pushes the bytes to OpenAI, attaches the file to the assistant
// so retrieval can see it, and records it in the session registry. Failing
// to attach is logged but not fatal; the file is still usable by ID.
func (s *Service) UploadFile(ctx context.Context, filename string, data []byte) (chat.AttachmentRef, error) {
	file, err := s.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    filename,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return chat.AttachmentRef{}, fmt.Errorf("upload file: %w", err)
	}

	if _, err := s.client.CreateAssistantFile(ctx, s.assistantID, openai.AssistantFileRequest{
		FileID: file.ID,
	}); err != nil {
		log.Printf("[assistant] could not attach file %s to assistant: %v", file.ID, err)
	}

	ref := chat.AttachmentRef{ID: file.ID, Filename: filename}

	s.mu.Lock()
	if _, seen := s.files[ref.ID]; !seen {
		s.order = append(s.order, ref.ID)
	}
	s.files[ref.ID] = ref
	s.mu.Unlock()

	log.Printf("[assistant] uploaded file: %s (%s)", filename, file.ID)
	return ref, nil
}

// ListFiles returns the session's uploaded files in upload order.
func (s *Service) ListFiles() []chat.AttachmentRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make([]chat.AttachmentRef, 0, len(s.order))
	for _, id := range s.order {
		refs = append(refs, s.files[id])
	}
	return refs
}

// DeleteFile removes the file upstream first, then untracks it. The upstream
// delete winning means a failed call leaves the registry consistent.
func (s *Service) DeleteFile(ctx context.Context, fileID string) error {
	s.mu.Lock()
	_, tracked := s.files[fileID]
	s.mu.Unlock()
	if !tracked {
		return ErrFileNotTracked
	}

	if err := s.client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	s.mu.Lock()
	delete(s.files, fileID)
	for i, id := range s.order {
		if id == fileID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	log.Printf("[assistant] deleted file: %s", fileID)
	return nil
}
