// Package assistant drives the OpenAI Assistants API: one thread per client
// session, run polling with tool dispatch, and the session-scoped file store
// backing the upload endpoints.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucafehr/fishbuddy/internal/config"
	"github.com/lucafehr/fishbuddy/internal/model/chat"
	"github.com/lucafehr/fishbuddy/internal/service/tools"
)

// ErrFileNotTracked is returned when deleting a file the session never saw.
var ErrFileNotTracked = errors.New("assistant: file not tracked in this session")

const maxToolRounds = 5

// Service wraps the OpenAI client plus the in-memory session file registry.
type Service struct {
	client       *openai.Client
	assistantID  string
	pollInterval time.Duration
	pollLimit    int
	tools        *tools.Service

	mu    sync.Mutex
	files map[string]chat.AttachmentRef
	order []string
}

// NewService builds the assistant service from configuration.
func NewService(cfg config.OpenAIConfig, toolSvc *tools.Service) *Service {
	return newService(openai.NewClient(cfg.APIKey), cfg, toolSvc)
}

// NewServiceWithClient injects a preconfigured OpenAI client (tests point it
// at a fake backend).
func NewServiceWithClient(client *openai.Client, cfg config.OpenAIConfig, toolSvc *tools.Service) *Service {
	return newService(client, cfg, toolSvc)
}

func newService(client *openai.Client, cfg config.OpenAIConfig, toolSvc *tools.Service) *Service {
	return &Service{
		client:       client,
		assistantID:  cfg.AssistantID,
		pollInterval: cfg.PollInterval,
		pollLimit:    cfg.PollLimit,
		tools:        toolSvc,
		files:        make(map[string]chat.AttachmentRef),
	}
}

// CreateThread provisions a fresh conversation thread.
func (s *Service) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	log.Printf("[assistant] created thread: %s", thread.ID)
	return thread.ID, nil
}

// Respond runs one question through the assistant and returns the reply text.
// The structured context is prepended the way the original prompt format
// expects it.
func (s *Service) Respond(ctx context.Context, threadID, message, contextJSON string) (string, error) {
	content := fmt.Sprintf("StructuredContext: %s\nQuestion: %s", contextJSON, message)
	if _, err := s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    "user",
		Content: content,
	}); err != nil {
		return "", fmt.Errorf("add user message: %w", err)
	}

	run, err := s.client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: s.assistantID})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	log.Printf("[assistant] run created: %s", run.ID)

	if err := s.pollRun(ctx, threadID, run.ID); err != nil {
		return "", err
	}

	return s.latestAssistantText(ctx, threadID)
}

// StreamLines delivers the assistant reply line by line, skipping blank
// lines. This matches the wire contract: one event per non-blank line.
func (s *Service) StreamLines(ctx context.Context, threadID, message, contextJSON string, emit func(line string) error) error {
	reply, err := s.Respond(ctx, threadID, message, contextJSON)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := emit(line); err != nil {
			return err
		}
	}
	return nil
}

// pollRun polls until the run reaches a terminal state, dispatching tool
// calls along the way.
func (s *Service) pollRun(ctx context.Context, threadID, runID string) error {
	terminal := map[openai.RunStatus]bool{
		openai.RunStatusCompleted: true,
		openai.RunStatusFailed:    true,
		openai.RunStatusExpired:   true,
		"cancelled":               true,
	}

	for poll := 0; poll < s.pollLimit; poll++ {
		run, err := s.client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("retrieve run: %w", err)
		}
		log.Printf("[assistant] poll #%d: run status = %s", poll+1, run.Status)

		if run.Status == openai.RunStatusRequiresAction {
			if err := s.dispatchTools(ctx, threadID, run); err != nil {
				return err
			}
		} else if terminal[run.Status] {
			log.Printf("[assistant] run reached terminal state: %s", run.Status)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}

	log.Printf("[assistant] poll limit reached for run %s", runID)
	return nil
}

// dispatchTools executes the run's pending tool calls and submits the
// outputs. Tool failures are reported back to the model, not up the stack.
func (s *Service) dispatchTools(ctx context.Context, threadID string, run openai.Run) error {
	for round := 0; round < maxToolRounds; round++ {
		ra := run.RequiredAction
		if run.Status != openai.RunStatusRequiresAction || ra == nil ||
			ra.Type != openai.RequiredActionTypeSubmitToolOutputs || ra.SubmitToolOutputs == nil {
			return nil
		}

		calls := ra.SubmitToolOutputs.ToolCalls
		log.Printf("[assistant] processing %d tool calls (round %d)", len(calls), round+1)

		outputs := make([]openai.ToolOutput, 0, len(calls))
		for _, call := range calls {
			result := s.tools.Dispatch(ctx, call.Function.Name, call.Function.Arguments)
			log.Printf("[assistant] tool %s -> %s", call.Function.Name, truncate(result, 100))
			outputs = append(outputs, openai.ToolOutput{
				ToolCallID: call.ID,
				Output:     result,
			})
		}

		updated, err := s.client.SubmitToolOutputs(ctx, threadID, run.ID, openai.SubmitToolOutputsRequest{
			ToolOutputs: outputs,
		})
		if err != nil {
			return fmt.Errorf("submit tool outputs: %w", err)
		}
		run = updated
	}

	log.Printf("[assistant] max tool rounds reached for run %s", run.ID)
	return nil
}

// latestAssistantText fetches the newest assistant message on the thread and
// joins its text parts with newlines.
func (s *Service) latestAssistantText(ctx context.Context, threadID string) (string, error) {
	limit := 20
	order := "desc"
	msgs, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, m := range msgs.Messages {
		if m.Role != "assistant" {
			continue
		}
		parts := make([]string, 0, len(m.Content))
		for _, c := range m.Content {
			if c.Type == "text" && c.Text != nil && c.Text.Value != "" {
				parts = append(parts, c.Text.Value)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n"), nil
		}
	}
	return "(no assistant reply)", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
