package aiquiz

import (
	"net"
	"net/http"

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

// GenerateProblems godoc
// @Summary Generate a problem set
// @Tags problems
// @Accept json
// @Produce json
// @Param request body GenerationRequest true "generation request"
// @Success 200 {object} Result
// @Failure 400 {object} config.ErrorBody
// @Failure 422 {object} config.ErrorBody
// @Router /api/problems/generate [post]
func (h *Handler) GenerateProblems(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	req, err := DecodeRequest(r.Body)
	if err != nil {
		log.WithError(err).Warn("Invalid generation request")
		status, body := Describe(err)
		config.JSON(w, status, body)
		return
	}

	result, err := h.service.Generate(r.Context(), req, callerFromRequest(r, "/api/problems/generate"))
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		status, body := Describe(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).Error("Failed to generate problems")
		}
		config.JSON(w, status, body)
		return
	}

	config.JSON(w, http.StatusOK, result)
}

// StreamProblems godoc
// @Summary Generate a problem set as a server-sent event stream
// @Tags problems
// @Accept json
// @Produce text/event-stream
// @Param request body GenerationRequest true "generation request"
// @Router /api/problems/generate/stream [post]
func (h *Handler) StreamProblems(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	req, err := DecodeRequest(r.Body)
	if err != nil {
		log.WithError(err).Warn("Invalid streaming generation request")
		status, body := Describe(err)
		config.JSON(w, status, body)
		return
	}

	sse, ok := newSSEWriter(w)
	if !ok {
		config.Error(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}
	sse.send(Event{Type: EventConnected, Message: "connected", Timestamp: nowUTC()})

	h.service.Stream(r.Context(), req, callerFromRequest(r, "/api/problems/generate/stream"), StreamCallbacks{
		OnChunk: func(e Event) {
			sse.send(e)
		},
		OnComplete: func(result *Result) {
			sse.send(Event{Type: EventComplete, Message: "problem generation completed", Data: result, Timestamp: nowUTC()})
		},
		OnError: func(err error) {
			_, body := Describe(err)
			sse.send(Event{
				Type:      EventError,
				Error:     body.Error,
				Message:   body.Message,
				Retryable: body.Retryable,
				Timestamp: nowUTC(),
			})
		},
	})
}

// Options godoc
// @Summary Supported subjects, difficulties and limits
// @Tags problems
// @Produce json
// @Success 200 {object} OptionsResponse
// @Router /api/problems/options [get]
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	config.JSON(w, http.StatusOK, buildOptions(h.service.ModelID()))
}

func callerFromRequest(r *http.Request, endpoint string) Caller {
	c := Caller{
		Endpoint:  endpoint,
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}
	if claims, err := auth.GetUserClaimsFromContext(r.Context()); err == nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			c.UserID = &id
		}
	}
	return c
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
