package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/generationlog"
	"github.com/saulo-duarte/edugen-api/internal/middlewares"
	"github.com/saulo-duarte/edugen-api/internal/questionset"
	"github.com/saulo-duarte/edugen-api/internal/user"
)

type RouterConfig struct {
	UserHandler          *user.Handler
	LogoutHandler        *auth.Handler
	AIQuizHandler        *aiquiz.Handler
	GenerationLogHandler *generationlog.Handler
	QuestionSetHandler   *questionset.Handler
	HealthHandler        http.HandlerFunc
	AllowedOrigins       []string
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Cors(cfg.AllowedOrigins))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Mount("/", user.Routes(cfg.UserHandler))
		r.Post("/logout", cfg.LogoutHandler.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/problems", aiquiz.Routes(cfg.AIQuizHandler))
		r.Mount("/problem-logs", generationlog.Routes(cfg.GenerationLogHandler))
		r.Mount("/admin/problem-logs", generationlog.AdminRoutes(cfg.GenerationLogHandler))
		r.Mount("/question-sets", questionset.Routes(cfg.QuestionSetHandler))
	})
	return r
}
