package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
)

var maskedFields = []string{"password"}

// Logging attaches a request scoped logger and request id to the context.
// The logger inherits from base, json bodies are logged with secrets masked.
func Logging(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(inHttp.HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c, span := otel.Tracer.Start(
				r.Context(),
				"middleware Logging",
				trace.WithAttributes(
					attribute.String(log.KeyRequestID, requestID),
					attribute.String(log.KeyRequestHost, r.Host),
					attribute.String(log.KeyRequestIp, r.RemoteAddr),
					attribute.String(log.KeyRequestMethod, r.Method),
					attribute.String(log.KeyRequestURI, r.RequestURI),
				),
			)
			defer span.End()

			requestBody := map[string]any{}
			if r.Body != nil {
				raw, err := io.ReadAll(r.Body)
				_ = r.Body.Close()
				if err != nil {
					otel.RecordError(err, span)
				}
				_ = json.Unmarshal(raw, &requestBody)
				for _, field := range maskedFields {
					if _, ok := requestBody[field]; ok {
						requestBody[field] = "****"
					}
				}
				r.Body = io.NopCloser(bytes.NewReader(raw))
			}

			logger := base.
				With().
				Str(log.KeyRequestID, requestID).
				Dict(log.KeyRequest, zerolog.Dict().
					Str(log.KeyRequestHost, r.Host).
					Str(log.KeyRequestIp, r.RemoteAddr).
					Str(log.KeyRequestMethod, r.Method).
					Str(log.KeyRequestURI, r.RequestURI).
					Any(log.KeyRequestBody, requestBody)).
				Str(log.KeyTag, "Logging").
				Logger()

			c = log.AttachRequestIDToContext(c, requestID)
			c = logger.WithContext(c)
			w.Header().Set(inHttp.HeaderRequestID, requestID)

			logger.Debug().Msg("handling request")
			next.ServeHTTP(w, r.WithContext(c))
			logger.Debug().Msg("handled request")
		})
	}
}
