// Package attachment tracks files staged for the next outgoing message.
// The pending set is independent of the transcript: entries already sent
// keep their own snapshot and are never touched from here.
package attachment

import (
	"errors"
	"sync"

	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

// ErrDuplicateAttachment is returned when an id is staged twice. The upload
// collaborator is expected never to hand out a duplicate id.
var ErrDuplicateAttachment = errors.New("attachment: id already staged")

// Tracker holds the pending attachment set in upload order.
type Tracker struct {
	mu    sync.Mutex
	files []chat.AttachmentRef
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Seed replaces the pending set, preserving order. Used once at startup with
// the collaborator's file listing.
func (t *Tracker) Seed(files []chat.AttachmentRef) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.files = make([]chat.AttachmentRef, len(files))
	copy(t.files, files)
}

// List returns a copy of the pending set in upload order.
func (t *Tracker) List() []chat.AttachmentRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	copied := make([]chat.AttachmentRef, len(t.files))
	copy(copied, t.files)
	return copied
}

// Add stages a file for the next message.
func (t *Tracker) Add(ref chat.AttachmentRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range t.files {
		if f.ID == ref.ID {
			return ErrDuplicateAttachment
		}
	}
	t.files = append(t.files, ref)
	return nil
}

// Remove unstages a file by id. Removing an absent id is a no-op.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, f := range t.files {
		if f.ID == id {
			t.files = append(t.files[:i], t.files[i+1:]...)
			return
		}
	}
}

// Drain returns the pending set and atomically resets it, so files staged
// during one turn never leak into the next.
func (t *Tracker) Drain() []chat.AttachmentRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	drained := t.files
	t.files = nil
	return drained
}

// Len returns the size of the pending set.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}
