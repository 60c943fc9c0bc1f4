// Package transcript holds the ordered conversation history. The transcript
// is append-only: entries are never removed or reordered, and only the most
// recently appended assistant entry may be mutated, while its stream is open.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

// ErrStaleHandle is returned when FoldDelta is called with a handle that no
// longer designates the open assistant entry. With turns serialized by the
// orchestrator this must never happen; it signals state corruption.
var ErrStaleHandle = errors.New("transcript: handle does not designate the open assistant entry")

// Handle designates the pending assistant entry of one turn. The generation
// counter guards against a handle outliving its turn.
type Handle struct {
	index int
	gen   uint64
}

// Store is the conversation store. All mutation goes through its methods.
type Store struct {
	mu       sync.RWMutex
	messages []chat.Message
	gen      uint64
	open     bool

	subMu sync.Mutex
	subs  []func()
}

// NewStore returns an empty transcript.
func NewStore() *Store {
	return &Store{messages: make([]chat.Message, 0, 16)}
}

// AppendUser appends a user entry. The files slice is the attachment snapshot
// taken at send time; it is copied so later tracker mutations cannot reach it.
func (s *Store) AppendUser(text string, files []chat.AttachmentRef) {
	var snapshot []chat.AttachmentRef
	if len(files) > 0 {
		snapshot = make([]chat.AttachmentRef, len(files))
		copy(snapshot, files)
	}

	s.mu.Lock()
	s.messages = append(s.messages, chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Text:      text,
		Files:     snapshot,
		CreatedAt: time.Now().UTC(),
	})
	s.mu.Unlock()

	s.notify()
}

// AppendPendingAssistant appends an empty assistant entry and returns the
// handle folds must present. Called exactly once per turn, after the user
// entry and before any delta.
func (s *Store) AppendPendingAssistant() Handle {
	s.mu.Lock()
	s.gen++
	s.open = true
	s.messages = append(s.messages, chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		CreatedAt: time.Now().UTC(),
	})
	h := Handle{index: len(s.messages) - 1, gen: s.gen}
	s.mu.Unlock()

	s.notify()
	return h
}

// FoldDelta appends delta plus a newline to the entry the handle designates,
// provided that entry is still the last one and its stream is still open.
func (s *Store) FoldDelta(h Handle, delta string) error {
	s.mu.Lock()
	if !s.open || h.gen != s.gen || h.index != len(s.messages)-1 {
		s.mu.Unlock()
		return ErrStaleHandle
	}
	s.messages[h.index].Text += delta + "\n"
	s.mu.Unlock()

	s.notify()
	return nil
}

// Freeze closes the pending assistant entry. Whatever text has been folded so
// far becomes final; subsequent folds with the handle fail. Freezing a handle
// from an earlier turn is a no-op.
func (s *Store) Freeze(h Handle) {
	s.mu.Lock()
	if s.open && h.gen == s.gen {
		s.open = false
	}
	s.mu.Unlock()

	s.notify()
}

// StreamOpen reports whether a pending assistant entry is accepting deltas.
func (s *Store) StreamOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Messages returns a snapshot copy of the transcript.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len returns the number of transcript entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Subscribe registers a callback fired after every transcript change.
// Callbacks run outside the store lock and must not block.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := s.subs
	s.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
