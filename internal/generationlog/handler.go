package generationlog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/config"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

func userIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		config.Error(w, http.StatusUnauthorized, "unauthorized", "invalid user id in token")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// ListLogs godoc
// @Summary List the caller's generation attempts
// @Tags problem-logs
// @Security BearerAuth
// @Produce json
// @Param limit query int false "page size" default(20)
// @Param offset query int false "offset" default(0)
// @Success 200 {object} Page
// @Router /api/problem-logs [get]
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	page, err := h.service.ListForUser(r.Context(), userID, queryInt(r, "limit", DefaultPageLimit), queryInt(r, "offset", 0))
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not list generation logs")
		return
	}
	config.JSON(w, http.StatusOK, page)
}

// UserStats godoc
// @Summary Generation statistics for the caller
// @Tags problem-logs
// @Security BearerAuth
// @Produce json
// @Param days query int false "trailing window in days" default(30)
// @Success 200 {object} UserStats
// @Router /api/problem-logs/stats [get]
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	stats, err := h.service.StatsForUser(r.Context(), userID, queryInt(r, "days", DefaultUserStatsDays))
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not compute statistics")
		return
	}
	config.JSON(w, http.StatusOK, stats)
}

// GetLog godoc
// @Summary One generation attempt owned by the caller
// @Tags problem-logs
// @Security BearerAuth
// @Produce json
// @Param id path string true "log id"
// @Success 200 {object} Entry
// @Failure 404 {object} config.ErrorBody
// @Router /api/problem-logs/{id} [get]
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"), &userID)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			config.Error(w, http.StatusNotFound, "not_found", "generation log not found")
			return
		}
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not load generation log")
		return
	}
	config.JSON(w, http.StatusOK, entry)
}

// GlobalStats godoc
// @Summary Generation statistics across all callers
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param days query int false "trailing window in days" default(7)
// @Param limit query int false "max entries considered" default(100)
// @Success 200 {object} GlobalStats
// @Router /api/admin/problem-logs/stats [get]
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GlobalStats(r.Context(), queryInt(r, "days", DefaultGlobalStatsDays), queryInt(r, "limit", DefaultGlobalLimit))
	if err != nil {
		config.Error(w, http.StatusInternalServerError, "internal_error", "could not compute statistics")
		return
	}
	config.JSON(w, http.StatusOK, stats)
}
