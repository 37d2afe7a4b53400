package user

import (
	"net/http"

	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"github.com/saulo-duarte/edugen-api/internal/config"
)

type UserContainer struct {
	Handler *Handler
	Service UserService
	Repo    UserRepository
}

func NewUserContainer(db *gorm.DB, s *config.Settings) *UserContainer {
	secret := s.SessionSecret
	if secret == "" {
		secret = s.JWTSecret
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	repo := NewRepository(db)
	service := NewService(repo, s.IsAdmin, s.JWTExpiry)
	oauth := NewGoogleOAuth(s.GoogleClientID, s.GoogleClientSecret, s.GoogleRedirectURL)
	handler := NewHandler(service, oauth, store, s.FrontendURL, s.IsProduction(), s.JWTExpiry)

	return &UserContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
