// Package gateway performs requests against the storefront REST api. It
// injects the bearer credential of the current session and reports a 401
// response to its subscribers instead of tearing the session down itself.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	goOtel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	"github.com/Alturino/storefront/internal/otel"
)

var tracer = goOtel.Tracer(constants.AppGateway)

// anonymousPaths answer 401 for bad credentials, which says nothing about
// the session held.
var anonymousPaths = map[string]bool{
	PathLogin:    true,
	PathRegister: true,
}

// TokenSource returns the bearer credential to send, or "" for anonymous
// requests.
type TokenSource interface {
	Token() string
}

type UnauthorizedFunc func(c context.Context)

type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status=%d message=%s", e.StatusCode, e.Message)
}

type Client struct {
	http    *http.Client
	tokens  TokenSource
	baseURL string

	mu          sync.RWMutex
	subscribers []UnauthorizedFunc
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(cl *Client) {
		cl.http = client
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(cl *Client) {
		cl.tokens = tokens
	}
}

func New(baseURL string, opts ...Option) *Client {
	cl := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

func (cl *Client) SetTokenSource(tokens TokenSource) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.tokens = tokens
}

// OnUnauthorized registers fn to run whenever the api answers 401.
func (cl *Client) OnUnauthorized(fn UnauthorizedFunc) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.subscribers = append(cl.subscribers, fn)
}

func (cl *Client) token() string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if cl.tokens == nil {
		return ""
	}
	return cl.tokens.Token()
}

func (cl *Client) emitUnauthorized(c context.Context) {
	cl.mu.RLock()
	subscribers := make([]UnauthorizedFunc, len(cl.subscribers))
	copy(subscribers, cl.subscribers)
	cl.mu.RUnlock()
	for _, fn := range subscribers {
		fn(c)
	}
}

func (cl *Client) Get(c context.Context, path string, query url.Values, out any) error {
	return cl.Do(c, http.MethodGet, path, query, nil, out)
}

func (cl *Client) Post(c context.Context, path string, body any, out any) error {
	return cl.Do(c, http.MethodPost, path, nil, body, out)
}

func (cl *Client) Put(c context.Context, path string, body any, out any) error {
	return cl.Do(c, http.MethodPut, path, nil, body, out)
}

func (cl *Client) Delete(c context.Context, path string) error {
	return cl.Do(c, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one request. A nil out discards the response body. Failures are
// never retried.
func (cl *Client) Do(
	c context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	out any,
) error {
	c, span := tracer.Start(
		c,
		"Gateway Do",
		trace.WithAttributes(
			attribute.String(log.KeyRequestMethod, method),
			attribute.String(log.KeyRequestURI, path),
		),
	)
	defer span.End()

	requestID := log.RequestIDFromContext(c)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	endpoint := cl.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Gateway Do").
		Str(log.KeyRequestID, requestID).
		Str(log.KeyRequestMethod, method).
		Str(log.KeyRequestURL, endpoint).
		Logger()

	var reader io.Reader
	if body != nil {
		logger = logger.With().Str(log.KeyProcess, "encoding request body").Logger()
		logger.Trace().Msg("encoding request body")
		b, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed encoding request body with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		reader = bytes.NewReader(b)
		logger.Trace().Msg("encoded request body")
	}

	logger = logger.With().Str(log.KeyProcess, "building request").Logger()
	req, err := http.NewRequestWithContext(c, method, endpoint, reader)
	if err != nil {
		err = fmt.Errorf("failed building request with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set(HeaderAccept, HeaderValueJson)
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set(HeaderContentType, HeaderValueJson)
	}
	if token := cl.token(); token != "" {
		req.Header.Set(HeaderAuthorization, BearerPrefix+token)
	}

	logger = logger.With().Str(log.KeyProcess, "sending request").Logger()
	logger.Debug().Msg("sending request")
	start := time.Now()
	resp, err := cl.http.Do(req)
	metric.GatewayDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metric.GatewayRequests.WithLabelValues(method, "error").Inc()
		err = fmt.Errorf("failed sending request to %s with error=%w", path, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer resp.Body.Close()
	metric.GatewayRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int(log.KeyResponseStatus, resp.StatusCode))
	logger = logger.With().Int(log.KeyResponseStatus, resp.StatusCode).Logger()
	logger.Debug().Msg("received response")

	if resp.StatusCode == http.StatusUnauthorized && !anonymousPaths[path] {
		_, _ = io.Copy(io.Discard, resp.Body)
		err = fmt.Errorf("request to %s rejected with error=%w", path, inErrors.ErrUnauthorized)
		otel.RecordError(err, span)
		logger.Warn().Err(err).Msg("credential rejected, notifying subscribers")
		cl.emitUnauthorized(logger.WithContext(c))
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		err = &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "decoding response body").Logger()
	logger.Trace().Msg("decoding response body")
	if s, ok := out.(*string); ok {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			err = fmt.Errorf("failed reading response body with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		*s = strings.TrimSpace(string(raw))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		err = fmt.Errorf("failed decoding response body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("decoded response body")

	return nil
}

// errorMessage extracts a readable message from an error body, which the api
// sends either as plain text or as a json object with a message field.
func errorMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}
	return string(trimmed)
}

// Message returns the api supplied message of err when it is a StatusError.
func Message(err error) (string, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message, true
	}
	return "", false
}
