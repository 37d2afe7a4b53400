package user

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/config"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUnverifiedEmail = errors.New("google account email is not verified")
)

type UserService interface {
	LoginWithGoogle(ctx context.Context, profile *GoogleProfile, token *oauth2.Token) (*User, string, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

type userService struct {
	repo     UserRepository
	isAdmin  func(email string) bool
	tokenTTL time.Duration
	now      func() time.Time
}

func NewService(repo UserRepository, isAdmin func(email string) bool, tokenTTL time.Duration) UserService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &userService{repo: repo, isAdmin: isAdmin, tokenTTL: tokenTTL, now: time.Now}
}

// LoginWithGoogle creates or refreshes the account behind a Google profile and
// issues an API token for it.
func (s *userService) LoginWithGoogle(ctx context.Context, profile *GoogleProfile, token *oauth2.Token) (*User, string, error) {
	log := config.WithContext(ctx).WithField("email", profile.Email)

	if !profile.VerifiedEmail {
		log.Warn("Rejected login with unverified email")
		return nil, "", ErrUnverifiedEmail
	}

	u, err := s.repo.GetByGoogleID(profile.ID)
	if err != nil {
		log.WithError(err).Error("Failed to look up user")
		return nil, "", err
	}

	isNew := u == nil
	if isNew {
		u = &User{GoogleID: profile.ID}
	}
	u.Email = profile.Email
	u.Name = profile.Name
	u.Picture = profile.Picture
	u.Role = auth.RoleUser
	if s.isAdmin(profile.Email) {
		u.Role = auth.RoleAdmin
	}
	now := s.now().UTC()
	u.LastLoginAt = &now

	if token != nil && token.RefreshToken != "" {
		encrypted, err := config.Encrypt(token.RefreshToken)
		if err != nil {
			log.WithError(err).Error("Failed to encrypt refresh token")
			return nil, "", err
		}
		u.RefreshToken = encrypted
	}

	if isNew {
		err = s.repo.Create(u)
	} else {
		err = s.repo.Update(u)
	}
	if err != nil {
		log.WithError(err).Error("Failed to save user")
		return nil, "", err
	}

	jwtToken, err := auth.GenerateJWT(u.ID.String(), u.Email, u.Role, s.tokenTTL)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		return nil, "", err
	}

	log.WithField("new_user", isNew).Info("User logged in with Google")
	return u, jwtToken, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to load user")
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
