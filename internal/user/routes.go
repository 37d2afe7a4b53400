package user

import (
	"github.com/go-chi/chi/v5"

	"github.com/saulo-duarte/edugen-api/internal/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/google", h.GoogleLogin)
	r.Get("/google/callback", h.GoogleCallback)
	r.Post("/verify-token", h.VerifyToken)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Get("/profile", h.Profile)
	})
	return r
}
