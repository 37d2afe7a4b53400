package generationlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulo-duarte/edugen-api/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)

	r.Get("/", h.ListLogs)
	r.Get("/stats", h.UserStats)
	r.Get("/{id}", h.GetLog)
	return r
}

func AdminRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)
	r.Use(auth.RequireRole(auth.RoleAdmin))

	r.Get("/stats", h.GlobalStats)
	return r
}
