package main

import (
	"context"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/lucafehr/fishbuddy/internal/client/api"
	"github.com/lucafehr/fishbuddy/internal/client/attachment"
	"github.com/lucafehr/fishbuddy/internal/client/transcript"
	"github.com/lucafehr/fishbuddy/internal/client/turn"
	"github.com/lucafehr/fishbuddy/internal/config"
	"github.com/lucafehr/fishbuddy/internal/model/chat"
	"github.com/lucafehr/fishbuddy/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The TUI owns the terminal; keep log output out of it.
	logFile, err := os.OpenFile("fishbuddy-chat.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	client := api.NewClient(cfg.Client)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// A failed thread creation still starts the UI; submissions are
	// rejected until the client is restarted with the backend up.
	var session *chat.Session
	if threadID, err := client.CreateThread(ctx); err != nil {
		log.Printf("[chat] thread creation failed: %v", err)
	} else {
		session = &chat.Session{ThreadID: threadID, CreatedAt: time.Now().UTC()}
	}

	tracker := attachment.NewTracker()
	if session.Ready() {
		if refs, err := client.ListFiles(ctx); err != nil {
			log.Printf("[chat] listing files failed: %v", err)
		} else {
			tracker.Seed(refs)
		}
	}

	store := transcript.NewStore()
	opener := func(ctx context.Context, threadID, message, contextJSON string) (turn.EventStream, error) {
		stream, err := client.OpenChatStream(ctx, threadID, message, contextJSON)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
	engine := turn.NewEngine(session, store, tracker, opener)

	model := tui.New(store, tracker, engine, client)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
