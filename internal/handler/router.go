package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/deepchat/backend/internal/handler/chat"
	middlewarePkg "github.com/zhouzirui/deepchat/backend/internal/middleware"
	chatService "github.com/zhouzirui/deepchat/backend/internal/service/chat"
	"github.com/zhouzirui/deepchat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(store *chatService.Store, exchanger *chatService.Exchanger, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigin))

	chatHandler := chat.New(store, exchanger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": store.Len(),
		})
	})

	r.Route("/api/v1", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}
