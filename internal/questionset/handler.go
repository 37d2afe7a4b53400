package questionset

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/config"
)

type Handler struct {
	service QuestionSetService
}

func NewHandler(s QuestionSetService) *Handler {
	return &Handler{service: s}
}

func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
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

func writeError(w http.ResponseWriter, err error) {
	var inputErr *aiquiz.InputError
	switch {
	case errors.As(err, &inputErr):
		config.Error(w, http.StatusBadRequest, "invalid_input", inputErr.Message)
	case errors.Is(err, ErrQuestionSetNotFound):
		config.Error(w, http.StatusNotFound, "not_found", "question set not found")
	case errors.Is(err, ErrAlreadyGenerating):
		config.Error(w, http.StatusConflict, "already_generating", err.Error())
	default:
		config.Error(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// CreateQuestionSet godoc
// @Summary Create a draft question set
// @Tags question-sets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateQuestionSetDTO true "question set"
// @Success 201 {object} QuestionSet
// @Router /api/question-sets [post]
func (h *Handler) CreateQuestionSet(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var in CreateQuestionSetDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.WithError(err).Warn("Invalid question set body")
		config.Error(w, http.StatusBadRequest, "invalid_input", "request body must be a JSON object")
		return
	}

	set, err := h.service.Create(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusCreated, set)
}

// ListQuestionSets godoc
// @Summary List the caller's question sets
// @Tags question-sets
// @Security BearerAuth
// @Produce json
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(10)
// @Success 200 {object} ListResponse
// @Router /api/question-sets [get]
func (h *Handler) ListQuestionSets(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.service.List(r.Context(), uid, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, resp)
}

// GetQuestionSet godoc
// @Summary A question set with its questions
// @Tags question-sets
// @Security BearerAuth
// @Produce json
// @Param id path string true "question set id"
// @Success 200 {object} QuestionSet
// @Router /api/question-sets/{id} [get]
func (h *Handler) GetQuestionSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	set, err := h.service.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, set)
}

// GetStatus godoc
// @Summary Generation status of a question set
// @Tags question-sets
// @Security BearerAuth
// @Produce json
// @Param id path string true "question set id"
// @Success 200 {object} StatusResponse
// @Router /api/question-sets/{id}/status [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	status, err := h.service.Status(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, status)
}

// DeleteQuestionSet godoc
// @Summary Delete a question set and its questions
// @Tags question-sets
// @Security BearerAuth
// @Param id path string true "question set id"
// @Router /api/question-sets/{id} [delete]
func (h *Handler) DeleteQuestionSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]string{
		"message": "question set deleted successfully",
	})
}

// GenerateQuestions godoc
// @Summary Start generating the questions of a set
// @Tags question-sets
// @Security BearerAuth
// @Produce json
// @Param id path string true "question set id"
// @Success 202 {object} StatusResponse
// @Failure 409 {object} config.ErrorBody
// @Router /api/question-sets/{id}/generate [post]
func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	caller := aiquiz.Caller{
		UserID:    &uid,
		Endpoint:  "/api/question-sets/{id}/generate",
		UserAgent: r.UserAgent(),
		IPAddress: remoteIP(r),
	}

	set, err := h.service.StartGeneration(r.Context(), uid, chi.URLParam(r, "id"), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusAccepted, StatusResponse{ID: set.ID.String(), Status: set.Status})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
