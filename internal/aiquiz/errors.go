package aiquiz

import (
	"context"
	"errors"
	"net/http"

	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/llm"
)

// ErrorKind is the stable machine-readable name of a generation failure.
func ErrorKind(err error) string {
	var inputErr *InputError
	var validationErr *ValidationError
	var endpointErr *llm.EndpointError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &inputErr):
		return "invalid_input"
	case errors.As(err, &validationErr):
		return string(validationErr.Kind)
	case errors.As(err, &endpointErr):
		return string(endpointErr.Kind)
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal_error"
	}
}

// Describe maps a generation failure to an HTTP status and the uniform body.
func Describe(err error) (int, config.ErrorBody) {
	body := config.ErrorBody{Error: ErrorKind(err), Message: err.Error()}

	var inputErr *InputError
	var validationErr *ValidationError
	var endpointErr *llm.EndpointError

	switch {
	case errors.As(err, &inputErr):
		body.Message = inputErr.Message
		return http.StatusBadRequest, body
	case errors.As(err, &validationErr):
		body.Message = "the model response did not match the expected format: " + validationErr.Error()
		body.Retryable = true
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &endpointErr):
		body.Retryable = endpointErr.Retryable()
		switch endpointErr.Kind {
		case llm.KindRateLimited:
			body.Message = "the model service is rate limiting requests, try again shortly"
			return http.StatusTooManyRequests, body
		case llm.KindTimeout:
			body.Message = "the model service did not answer in time"
			return http.StatusGatewayTimeout, body
		case llm.KindUnauthorized:
			body.Message = "the model service rejected our credentials"
		case llm.KindBadRequest:
			body.Message = "the model service rejected the request"
		default:
			body.Message = "the model service is unavailable"
		}
		return http.StatusBadGateway, body
	default:
		body.Message = "internal server error"
		return http.StatusInternalServerError, body
	}
}
