package auth

import (
	"net/http"

	"github.com/saulo-duarte/edugen-api/internal/config"
)

type Handler struct {
	secureCookies bool
}

func NewHandler(secureCookies bool) *Handler {
	return &Handler{secureCookies: secureCookies}
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, ExpiredCookie(h.secureCookies))

	config.JSON(w, http.StatusOK, map[string]string{
		"message": "logout successful",
	})
}

func SessionCookie(token string, maxAge int, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func ExpiredCookie(secure bool) *http.Cookie {
	return SessionCookie("", -1, secure)
}
