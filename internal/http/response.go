package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/otel"
)

const (
	HeaderContentType    = "Content-Type"
	HeaderRequestID      = "X-Request-Id"
	HeaderLocation       = "Location"
	ValueApplicationJson = "application/json"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Response is the envelope of every view server reply. Redirect names the
// navigation route the caller should move to.
type Response struct {
	Data       any    `json:"data,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Redirect   string `json:"redirect,omitempty"`
	StatusCode int    `json:"statusCode"`
}

func WriteJsonResponse(c context.Context, w http.ResponseWriter, body Response) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	if body.Status == "" {
		body.Status = StatusSuccess
		if body.StatusCode >= http.StatusBadRequest {
			body.Status = StatusFailed
		}
	}
	if body.StatusCode == 0 {
		body.StatusCode = http.StatusOK
	}

	w.Header().Set(HeaderContentType, ValueApplicationJson)
	if body.Redirect != "" {
		w.Header().Set(HeaderLocation, body.Redirect)
	}
	w.WriteHeader(body.StatusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

func WriteSuccess(c context.Context, w http.ResponseWriter, statusCode int, message string, data any) {
	WriteJsonResponse(c, w, Response{StatusCode: statusCode, Message: message, Data: data})
}

// WriteError maps err onto a status code. A rejected credential sends the
// caller to login, a missing role sends it home. Errors without a mapping
// answer 500 with a generic message, their detail only reaches the log.
func WriteError(c context.Context, w http.ResponseWriter, err error) {
	body := Response{StatusCode: http.StatusInternalServerError, Message: inErrors.ErrUnexpected.Error()}
	switch {
	case errors.Is(err, inErrors.ErrUnauthorized):
		body.StatusCode = http.StatusUnauthorized
		body.Message = inErrors.ErrUnauthorized.Error()
		body.Redirect = "/login"
	case errors.Is(err, inErrors.ErrForbidden):
		body.StatusCode = http.StatusForbidden
		body.Message = inErrors.ErrForbidden.Error()
		body.Redirect = "/"
	case errors.Is(err, inErrors.ErrPlaceOrder):
		body.StatusCode = http.StatusBadGateway
		body.Message = inErrors.ErrPlaceOrder.Error()
	case errors.Is(err, inErrors.ErrLoginFailed),
		errors.Is(err, inErrors.ErrRegisterFailed),
		errors.Is(err, inErrors.ErrEmptyCart),
		errors.Is(err, inErrors.ErrInvalidQuantity),
		errors.Is(err, inErrors.ErrInvalidProductID),
		errors.Is(err, inErrors.ErrBadRequest),
		errors.Is(err, inErrors.ErrOutOfStock):
		body.StatusCode = http.StatusBadRequest
		body.Message = err.Error()
	default:
		var statusErr *gateway.StatusError
		if errors.As(err, &statusErr) {
			body.StatusCode = http.StatusBadGateway
			if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
				body.StatusCode = statusErr.StatusCode
			}
			if statusErr.Message != "" {
				body.Message = statusErr.Message
			}
		}
	}
	WriteJsonResponse(c, w, body)
}
