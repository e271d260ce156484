package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/krittin/healthchat/backend/internal/agent"
	"github.com/krittin/healthchat/backend/internal/handler/completion"
	middlewarePkg "github.com/krittin/healthchat/backend/internal/middleware"
	chatService "github.com/krittin/healthchat/backend/internal/service/chat"
	"github.com/krittin/healthchat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(engine *agent.Engine, sessions *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	completionHandler := completion.New(engine, sessions)
	r.Route("/v1", func(v1 chi.Router) {
		completionHandler.RegisterRoutes(v1)
	})

	return r
}
