// Package turn drives one user submission through completion: it snapshots
// input and attachments, appends the transcript entries, consumes the chat
// event stream and folds deltas into the pending assistant entry. Only one
// turn may be open at a time; the busy flag enforces it.
package turn

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/lucafehr/fishbuddy/internal/client/api"
	"github.com/lucafehr/fishbuddy/internal/client/attachment"
	"github.com/lucafehr/fishbuddy/internal/client/transcript"
	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

var (
	// ErrEmptyInput rejects blank or whitespace-only submissions.
	ErrEmptyInput = errors.New("turn: empty input")
	// ErrNoSession rejects submissions while no conversation thread exists.
	ErrNoSession = errors.New("turn: no conversation session")
	// ErrBusy rejects a submission while a turn is already in progress.
	ErrBusy = errors.New("turn: a turn is already in progress")
)

// State is the stream consumer state for the current or most recent turn.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateClosedSuccess
	StateClosedError
)

// EventStream is the consumer-side view of one open chat stream.
type EventStream interface {
	Recv() (api.Event, error)
	Close() error
}

// OpenerFunc opens the event stream for one turn, keyed by thread, message
// and context snapshot.
type OpenerFunc func(ctx context.Context, threadID, message, contextJSON string) (EventStream, error)

// Engine is the send orchestrator.
type Engine struct {
	store   *transcript.Store
	tracker *attachment.Tracker
	open    OpenerFunc

	// OnDone and OnError fire after the busy flag is cleared, from the
	// stream goroutine. Set them before the first SubmitTurn.
	OnDone  func()
	OnError func(err error)

	mu      sync.Mutex
	session *chat.Session
	form    chat.Context
	busy    bool
	state   State
}

// NewEngine wires the orchestrator. session may be nil when thread creation
// failed; every SubmitTurn then returns ErrNoSession.
func NewEngine(session *chat.Session, store *transcript.Store, tracker *attachment.Tracker, open OpenerFunc) *Engine {
	return &Engine{
		store:   store,
		tracker: tracker,
		open:    open,
		session: session,
		state:   StateIdle,
	}
}

// Session returns the conversation session, nil when unset.
func (e *Engine) Session() *chat.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Busy reports whether a turn is in progress.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// State returns the stream consumer state of the current or last turn.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// UpdateContext mutates the context form under the engine lock.
func (e *Engine) UpdateContext(fn func(*chat.Context)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.form)
}

// Context returns the current context form values.
func (e *Engine) Context() chat.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// SubmitTurn starts one turn. It rejects blank input, a missing session and
// an in-progress turn; on acceptance it drains the attachment tracker into
// the user entry, appends the pending assistant entry and opens the stream.
func (e *Engine) SubmitTurn(rawInput string) error {
	if strings.TrimSpace(rawInput) == "" {
		return ErrEmptyInput
	}

	e.mu.Lock()
	if !e.session.Ready() {
		e.mu.Unlock()
		return ErrNoSession
	}
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	e.busy = true
	e.state = StateOpen
	threadID := e.session.ThreadID
	contextJSON := e.form.EncodeJSON()
	e.mu.Unlock()

	files := e.tracker.Drain()
	e.store.AppendUser(rawInput, files)
	h := e.store.AppendPendingAssistant()

	go e.consume(h, threadID, rawInput, contextJSON)
	return nil
}

// consume runs the stream state machine for one turn: Open until a done
// marker (success) or any transport/decode failure (error). Partial text is
// retained either way.
func (e *Engine) consume(h transcript.Handle, threadID, message, contextJSON string) {
	stream, err := e.open(context.Background(), threadID, message, contextJSON)
	if err != nil {
		e.finish(h, err)
		return
	}
	defer stream.Close()

	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("turn: stream closed before done marker")
			}
			e.finish(h, err)
			return
		}
		if ev.Done {
			e.finish(h, nil)
			return
		}
		if ev.Text == "" {
			continue
		}
		if err := e.store.FoldDelta(h, ev.Text); err != nil {
			e.finish(h, err)
			return
		}
	}
}

func (e *Engine) finish(h transcript.Handle, err error) {
	e.store.Freeze(h)

	e.mu.Lock()
	e.busy = false
	if err != nil {
		e.state = StateClosedError
	} else {
		e.state = StateClosedSuccess
	}
	e.mu.Unlock()

	if err != nil {
		log.Printf("[turn] stream terminated: %v", err)
		if e.OnError != nil {
			e.OnError(err)
		}
		return
	}
	if e.OnDone != nil {
		e.OnDone()
	}
}
