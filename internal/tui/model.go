// Package tui is the terminal chat frontend: a transcript view, an input
// line with slash commands, and a typing indicator while a turn is open.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lucafehr/fishbuddy/internal/client/attachment"
	"github.com/lucafehr/fishbuddy/internal/client/transcript"
	"github.com/lucafehr/fishbuddy/internal/client/turn"
	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

// FileAPI is the backend file surface the attach commands need.
type FileAPI interface {
	UploadFile(ctx context.Context, filename string, r io.Reader) (chat.AttachmentRef, error)
	DeleteFile(ctx context.Context, id string) error
}

type (
	transcriptMsg   struct{}
	turnDoneMsg     struct{}
	turnFailedMsg   struct{ err error }
	uploadedMsg     struct{ ref chat.AttachmentRef }
	uploadFailedMsg struct {
		filename string
		err      error
	}
	detachedMsg struct{ id string }
)

// Model is the bubbletea model for the chat client.
type Model struct {
	store   *transcript.Store
	tracker *attachment.Tracker
	engine  *turn.Engine
	files   FileAPI

	input textinput.Model
	spin  spinner.Model

	events chan tea.Msg

	width       int
	status      string
	statusIsErr bool
	interrupted bool
}

// New wires the model to the conversation core. Store notifications and
// engine callbacks are funneled through one channel the Update loop drains.
func New(store *transcript.Store, tracker *attachment.Tracker, engine *turn.Engine, files FileAPI) Model {
	in := textinput.New()
	in.Placeholder = "Ask about fishing in Switzerland"
	in.Prompt = "You> "
	in.Focus()
	in.CharLimit = 0
	in.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	events := make(chan tea.Msg, 64)
	store.Subscribe(func() {
		select {
		case events <- transcriptMsg{}:
		default:
		}
	})
	engine.OnDone = func() { events <- turnDoneMsg{} }
	engine.OnError = func(err error) { events <- turnFailedMsg{err: err} }

	return Model{
		store:   store,
		tracker: tracker,
		engine:  engine,
		files:   files,
		input:   in,
		spin:    sp,
		events:  events,
	}
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.listen())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 20 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m.handleSubmit()
		}

	case transcriptMsg:
		return m, m.listen()

	case turnDoneMsg:
		return m, m.listen()

	case turnFailedMsg:
		m.interrupted = true
		m.setError(fmt.Sprintf("stream failed: %v", msg.err))
		return m, m.listen()

	case uploadedMsg:
		if err := m.tracker.Add(msg.ref); err != nil {
			if errors.Is(err, attachment.ErrDuplicateAttachment) {
				m.setError(fmt.Sprintf("%s is already staged", msg.ref.Filename))
			} else {
				m.setError(err.Error())
			}
			return m, nil
		}
		m.setStatus(fmt.Sprintf("staged %s (%s)", msg.ref.Filename, msg.ref.ID))
		return m, nil

	case uploadFailedMsg:
		m.setError(fmt.Sprintf("upload of %s failed: %v", msg.filename, msg.err))
		return m, nil

	case detachedMsg:
		m.tracker.Remove(msg.id)
		m.setStatus(fmt.Sprintf("detached %s", msg.id))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return m, nil
	}

	if strings.HasPrefix(raw, "/") {
		return m.handleCommand(raw)
	}

	if err := m.engine.SubmitTurn(raw); err != nil {
		switch {
		case errors.Is(err, turn.ErrBusy):
			m.setError("still answering the previous question")
		case errors.Is(err, turn.ErrNoSession):
			m.setError("no conversation session; restart the client to reconnect")
		default:
			m.setError(err.Error())
		}
		return m, nil
	}

	m.interrupted = false
	m.setStatus("")
	m.input.SetValue("")
	return m, nil
}

func (m Model) handleCommand(raw string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(raw)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit":
		return m, tea.Quit

	case "/attach":
		if len(args) != 1 {
			m.setError("usage: /attach <path>")
			return m, nil
		}
		m.input.SetValue("")
		m.setStatus(fmt.Sprintf("uploading %s...", args[0]))
		return m, uploadCmd(m.files, args[0])

	case "/detach":
		if len(args) != 1 {
			m.setError("usage: /detach <file_id>")
			return m, nil
		}
		id := args[0]
		m.input.SetValue("")
		m.setStatus(fmt.Sprintf("detaching %s...", id))
		// The backend delete decides: the tracker is only touched once it
		// succeeded. A failed delete only logs.
		return m, detachCmd(m.files, id)

	case "/files":
		refs := m.tracker.List()
		if len(refs) == 0 {
			m.setStatus("no files staged")
			m.input.SetValue("")
			return m, nil
		}
		names := make([]string, 0, len(refs))
		for _, ref := range refs {
			names = append(names, fmt.Sprintf("%s (%s)", ref.Filename, ref.ID))
		}
		m.setStatus("staged: " + strings.Join(names, ", "))
		m.input.SetValue("")
		return m, nil

	case "/context":
		return m.handleContext(args)

	default:
		m.setError(fmt.Sprintf("unknown command %s", cmd))
		return m, nil
	}
}

// handleContext shows the structured context or sets key=value pairs.
func (m Model) handleContext(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.setStatus("context: " + m.engine.Context().EncodeJSON())
		m.input.SetValue("")
		return m, nil
	}

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			m.setError("usage: /context key=value [key=value ...]")
			return m, nil
		}

		known := true
		m.engine.UpdateContext(func(c *chat.Context) {
			switch key {
			case "level":
				c.Level = value
			case "canton":
				c.Canton = value
			case "waterbody":
				c.Waterbody = value
			case "place":
				c.Place = value
			case "user_type":
				c.UserType = value
			default:
				known = false
			}
		})
		if !known {
			m.setError(fmt.Sprintf("unknown context key %q", key))
			return m, nil
		}
	}

	m.setStatus("context: " + m.engine.Context().EncodeJSON())
	m.input.SetValue("")
	return m, nil
}

func uploadCmd(files FileAPI, path string) tea.Cmd {
	return func() tea.Msg {
		filename := filepath.Base(path)

		f, err := os.Open(path)
		if err != nil {
			return uploadFailedMsg{filename: filename, err: err}
		}
		defer f.Close()

		ref, err := files.UploadFile(context.Background(), filename, f)
		if err != nil {
			return uploadFailedMsg{filename: filename, err: err}
		}
		return uploadedMsg{ref: ref}
	}
}

func detachCmd(files FileAPI, id string) tea.Cmd {
	return func() tea.Msg {
		if err := files.DeleteFile(context.Background(), id); err != nil {
			log.Printf("[tui] backend delete of %s failed: %v", id, err)
			return nil
		}
		return detachedMsg{id: id}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusIsErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusIsErr = true
}
