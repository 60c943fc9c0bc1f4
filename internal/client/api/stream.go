package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Event is one decoded frame of the chat stream: either a partial text chunk
// or the terminal done marker.
type Event struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// ChatStream reads SSE frames off one open chat response. Events arrive in
// transport order; Recv never reorders or skips a data frame.
type ChatStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

func newChatStream(body io.ReadCloser) *ChatStream {
	return &ChatStream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Recv returns the next event. It returns io.EOF when the transport closes
// without a done marker, and a decode error when a data frame is not valid
// JSON — the caller treats both as terminal failure for the turn.
func (s *ChatStream) Recv() (Event, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && strings.TrimSpace(line) == "" {
				return Event{}, io.EOF
			}
			if err != io.EOF {
				return Event{}, err
			}
			// Fall through to process a final unterminated line.
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			// Unknown SSE field, e.g. "event:"; the backend only sends data frames.
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return Event{}, fmt.Errorf("chat stream: malformed frame %q: %w", payload, err)
		}
		return ev, nil
	}
}

// Close releases the underlying connection. Closing is the stream's only
// cancellation primitive.
func (s *ChatStream) Close() error {
	return s.body.Close()
}
