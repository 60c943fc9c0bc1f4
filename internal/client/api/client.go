// Package api is the HTTP client for the FishBuddy backend: thread creation,
// file upload/listing/deletion and the per-turn chat event stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/lucafehr/fishbuddy/internal/config"
	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

// Client talks to one backend instance. The request timeout applies to the
// plain request/response calls only; the chat stream is bounded by its
// context, never by a client timeout.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.ClientConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		stream:  &http.Client{},
	}
}

// CreateThread asks the backend for a fresh conversation thread.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/thread", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		ThreadID string `json:"thread_id"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("create thread: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.ThreadID == "" {
		return "", fmt.Errorf("create thread: backend error: %s", errorOr(payload.Error, resp.Status))
	}
	return payload.ThreadID, nil
}

// ListFiles returns the files uploaded in the current backend session,
// in upload order.
func (c *Client) ListFiles(ctx context.Context) ([]chat.AttachmentRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list files: backend status %s", resp.Status)
	}

	var payload struct {
		Files []chat.AttachmentRef `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("list files: decode response: %w", err)
	}
	return payload.Files, nil
}

// UploadFile sends one file as multipart form data. On backend failure the
// returned error carries the backend's message for display to the user.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (chat.AttachmentRef, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return chat.AttachmentRef{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return chat.AttachmentRef{}, fmt.Errorf("upload: read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return chat.AttachmentRef{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return chat.AttachmentRef{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return chat.AttachmentRef{}, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		FileID   string `json:"file_id"`
		Filename string `json:"filename"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return chat.AttachmentRef{}, fmt.Errorf("upload: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.FileID == "" {
		return chat.AttachmentRef{}, fmt.Errorf("upload failed: %s", errorOr(payload.Error, resp.Status))
	}
	return chat.AttachmentRef{ID: payload.FileID, Filename: payload.Filename}, nil
}

// DeleteFile removes an uploaded file from the backend session.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/files/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return fmt.Errorf("delete file: %s", errorOr(payload.Error, resp.Status))
	}
	return nil
}

// OpenChatStream starts the event stream for one turn. The caller owns the
// returned stream and must Close it.
func (c *Client) OpenChatStream(ctx context.Context, threadID, message, contextJSON string) (*ChatStream, error) {
	params := url.Values{}
	params.Set("thread_id", threadID)
	params.Set("message", message)
	params.Set("context", contextJSON)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open chat stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("open chat stream: backend status %s", resp.Status)
	}
	return newChatStream(resp.Body), nil
}

func errorOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
