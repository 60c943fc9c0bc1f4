package chat

import "time"

// Session scopes one conversation to a backend thread. Created once at
// startup; a zero ThreadID means thread creation failed and submission
// stays disabled.
type Session struct {
	ThreadID  string    `json:"threadId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Ready reports whether the session can accept turns.
func (s *Session) Ready() bool {
	return s != nil && s.ThreadID != ""
}
