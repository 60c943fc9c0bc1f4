package chat

import "time"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AttachmentRef points at a file uploaded for the current session.
type AttachmentRef struct {
	ID       string `json:"file_id"`
	Filename string `json:"filename"`
}

// Message is one transcript entry. Files holds the attachment snapshot taken
// at send time for user entries; assistant entries never carry files.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Text      string          `json:"text"`
	Files     []AttachmentRef `json:"files,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
