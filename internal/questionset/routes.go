package questionset

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saulo-duarte/edugen-api/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)

	r.Post("/", h.CreateQuestionSet)
	r.Get("/", h.ListQuestionSets)
	r.Get("/{id}", h.GetQuestionSet)
	r.Get("/{id}/status", h.GetStatus)
	r.Delete("/{id}", h.DeleteQuestionSet)
	r.Post("/{id}/generate", h.GenerateQuestions)
	return r
}
