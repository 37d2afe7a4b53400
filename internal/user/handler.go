package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/config"
)

const (
	oauthSessionName = "edugen_oauth"
	oauthStateKey    = "state"
)

type Handler struct {
	service     UserService
	oauth       GoogleOAuth
	store       sessions.Store
	frontendURL string
	secure      bool
	tokenTTL    time.Duration
}

func NewHandler(service UserService, oauth GoogleOAuth, store sessions.Store, frontendURL string, secure bool, tokenTTL time.Duration) *Handler {
	return &Handler{
		service:     service,
		oauth:       oauth,
		store:       store,
		frontendURL: frontendURL,
		secure:      secure,
		tokenTTL:    tokenTTL,
	}
}

// GoogleLogin godoc
// @Summary Start the Google OAuth flow
// @Tags auth
// @Success 307
// @Router /auth/google [get]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	session, _ := h.store.Get(r, oauthSessionName)
	state := uuid.NewString()
	session.Values[oauthStateKey] = state
	if err := session.Save(r, w); err != nil {
		log.WithError(err).Error("Failed to save oauth session")
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not start login")
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback godoc
// @Summary Finish the Google OAuth flow and redirect to the frontend with a token
// @Tags auth
// @Param state query string true "oauth state"
// @Param code query string true "authorization code"
// @Success 307
// @Failure 400 {object} config.ErrorBody
// @Router /auth/google/callback [get]
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	session, _ := h.store.Get(r, oauthSessionName)
	expected, _ := session.Values[oauthStateKey].(string)
	if expected == "" || r.URL.Query().Get("state") != expected {
		log.Warn("OAuth callback with mismatched state")
		config.Error(w, http.StatusBadRequest, "invalid_state", "login session expired, please try again")
		return
	}
	delete(session.Values, oauthStateKey)
	if err := session.Save(r, w); err != nil {
		log.WithError(err).Warn("Failed to clear oauth state")
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		config.Error(w, http.StatusBadRequest, "missing_code", "authorization code is required")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.WithError(err).Error("Failed to exchange oauth code")
		config.Error(w, http.StatusBadGateway, "oauth_exchange_failed", "could not complete Google login")
		return
	}

	profile, err := h.oauth.FetchProfile(r.Context(), token)
	if err != nil {
		log.WithError(err).Error("Failed to fetch Google profile")
		config.Error(w, http.StatusBadGateway, "oauth_profile_failed", "could not read Google profile")
		return
	}

	_, jwtToken, err := h.service.LoginWithGoogle(r.Context(), profile, token)
	if err != nil {
		if errors.Is(err, ErrUnverifiedEmail) {
			config.Error(w, http.StatusForbidden, "unverified_email", err.Error())
			return
		}
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not complete login")
		return
	}

	http.SetCookie(w, auth.SessionCookie(jwtToken, int(h.tokenTTL.Seconds()), h.secure))
	http.Redirect(w, r, h.frontendURL+"/auth/success?token="+url.QueryEscape(jwtToken), http.StatusTemporaryRedirect)
}

// Profile godoc
// @Summary Current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} User
// @Router /auth/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	u, err := h.service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			config.Error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not load profile")
		return
	}

	config.JSON(w, http.StatusOK, u)
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

type verifyTokenResponse struct {
	Valid     bool      `json:"valid"`
	UserID    string    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// VerifyToken godoc
// @Summary Check whether a token is valid
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/verify-token [post]
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.Error(w, http.StatusBadRequest, "invalid_input", "token is required")
		return
	}

	claims, err := auth.ValidateJWT(req.Token)
	if err != nil {
		config.JSON(w, http.StatusUnauthorized, verifyTokenResponse{Valid: false})
		return
	}

	resp := verifyTokenResponse{Valid: true, UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	config.JSON(w, http.StatusOK, resp)
}
