package aiquiz

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulo-duarte/edugen-api/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.OptionalAuthMiddleware)

	r.Post("/generate", h.GenerateProblems)
	r.Post("/generate/stream", h.StreamProblems)
	r.Get("/options", h.Options)
	return r
}
