package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lucafehr/fishbuddy/internal/handler/files"
	"github.com/lucafehr/fishbuddy/internal/handler/stream"
	"github.com/lucafehr/fishbuddy/internal/handler/thread"
	"github.com/lucafehr/fishbuddy/internal/handler/ws"
	middlewarePkg "github.com/lucafehr/fishbuddy/internal/middleware"
	"github.com/lucafehr/fishbuddy/internal/service/assistant"
	"github.com/lucafehr/fishbuddy/pkg/utils"
)

// NewRouter wires HTTP routes to the assistant service.
func NewRouter(assistantSvc *assistant.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	threadHandler := thread.New(assistantSvc)
	filesHandler := files.New(assistantSvc)
	streamHandler := stream.New(assistantSvc)
	wsHandler := ws.New(assistantSvc)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		threadHandler.RegisterRoutes(api)
		filesHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
