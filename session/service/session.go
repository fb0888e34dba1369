// Package service owns the session: the authenticated identity and its
// bearer credential. The gateway reports rejected credentials through an
// event this service subscribes to.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/storage"
	"github.com/Alturino/storefront/internal/validate"
	"github.com/Alturino/storefront/session/pkg/request"
	"github.com/Alturino/storefront/session/pkg/response"
)

var tracer = otel.Tracer(constants.AppSessionService)

type InvalidatedFunc func(c context.Context)

type SessionService struct {
	store   storage.Store
	gateway *gateway.Client
	now     func() time.Time

	mu          sync.RWMutex
	user        *response.User
	token       string
	invalidated []InvalidatedFunc
}

// NewSessionService wires the session to the gateway: the gateway reads the
// credential from it and reports 401 responses to Invalidate.
func NewSessionService(store storage.Store, gw *gateway.Client) *SessionService {
	s := &SessionService{store: store, gateway: gw, now: time.Now}
	gw.SetTokenSource(s)
	gw.OnUnauthorized(s.Invalidate)
	return s
}

// OnInvalidated registers fn to run after the session was torn down because
// the api rejected the credential. View layers use it to send the user to
// the login entry point.
func (s *SessionService) OnInvalidated(fn InvalidatedFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = append(s.invalidated, fn)
}

func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current identity and whether one is held.
func (s *SessionService) User() (response.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return response.User{}, false
	}
	return *s.user, true
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *SessionService) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

// Hydrate restores a persisted session. A credential that is a jwt past its
// expiry is discarded together with its identity.
func (s *SessionService) Hydrate(c context.Context) {
	c, span := tracer.Start(c, "SessionService Hydrate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionService Hydrate").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading session").Logger()
	logger.Trace().Msg("reading session")
	token, err := s.store.Get(c, storage.KeyToken)
	if err != nil {
		if !errors.Is(err, inErrors.ErrKeyNotFound) {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg("failed reading token, starting anonymous")
		}
		return
	}
	rawUser, err := s.store.Get(c, storage.KeyUser)
	if err != nil {
		if !errors.Is(err, inErrors.ErrKeyNotFound) {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg("failed reading user, starting anonymous")
		}
		return
	}

	user := response.User{}
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		err = fmt.Errorf("failed decoding persisted user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg("discarding persisted session")
		s.clear(c)
		return
	}

	if s.expired(token) {
		logger.Info().Str(log.KeyEmail, user.Email).Msg("persisted credential expired, discarding session")
		s.clear(c)
		return
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()
	logger.Debug().Str(log.KeyEmail, user.Email).Msg("restored session")
}

// expired reports whether token is a jwt whose exp claim has passed. The
// signature is not checked, only the api can do that. Opaque credentials
// never expire client side.
func (s *SessionService) expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(s.now())
}

func (s *SessionService) Login(c context.Context, param request.Login) (response.User, error) {
	c, span := tracer.Start(c, "SessionService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating login").Logger()
	logger.Trace().Msg("validating login")
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("%w: %s", inErrors.ErrLoginFailed, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Msg("validated login")

	logger = logger.With().Str(log.KeyProcess, "requesting login").Logger()
	logger.Debug().Object("login", param).Msg("requesting login")
	auth := response.Auth{}
	if err := s.gateway.Post(logger.WithContext(c), gateway.PathLogin, param, &auth); err != nil {
		message := "invalid credentials"
		if m, ok := gateway.Message(err); ok {
			message = m
		}
		err = fmt.Errorf("%w: %s", inErrors.ErrLoginFailed, message)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	if auth.Token == "" {
		err := fmt.Errorf("%w: missing token in response", inErrors.ErrLoginFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	user := auth.User()
	logger.Debug().Str(log.KeyRole, user.Role).Msg("logged in")

	logger = logger.With().Str(log.KeyProcess, "persisting session").Logger()
	s.mu.Lock()
	s.user = &user
	s.token = auth.Token
	s.mu.Unlock()
	s.persist(logger.WithContext(c), user, auth.Token)

	return user, nil
}

func (s *SessionService) Register(c context.Context, param request.Register) (string, error) {
	c, span := tracer.Start(c, "SessionService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating register").Logger()
	logger.Trace().Msg("validating register")
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("%w: %s", inErrors.ErrRegisterFailed, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	logger = logger.With().Str(log.KeyProcess, "requesting register").Logger()
	logger.Debug().Object("register", param).Msg("requesting register")
	var message string
	if err := s.gateway.Post(logger.WithContext(c), gateway.PathRegister, param, &message); err != nil {
		if m, ok := gateway.Message(err); ok {
			err = fmt.Errorf("%w: %s", inErrors.ErrRegisterFailed, m)
		} else {
			err = fmt.Errorf("%w: %w", inErrors.ErrRegisterFailed, err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Debug().Msg("registered")

	return message, nil
}

func (s *SessionService) Logout(c context.Context) {
	c, span := tracer.Start(c, "SessionService Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionService Logout").
		Logger()

	logger.Debug().Msg("logging out")
	s.clear(logger.WithContext(c))
	logger.Debug().Msg("logged out")
}

// Invalidate tears the session down after the api rejected the credential
// and notifies the OnInvalidated listeners.
func (s *SessionService) Invalidate(c context.Context) {
	c, span := tracer.Start(c, "SessionService Invalidate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionService Invalidate").
		Logger()

	metric.SessionInvalidations.Inc()
	logger.Warn().Msg("credential rejected by api, clearing session")
	s.clear(logger.WithContext(c))

	s.mu.RLock()
	listeners := make([]InvalidatedFunc, len(s.invalidated))
	copy(listeners, s.invalidated)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(c)
	}
}

func (s *SessionService) clear(c context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	logger := zerolog.Ctx(c)
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if err := s.store.Remove(c, key); err != nil {
			logger.Error().Err(err).Str(log.KeyStorageKey, key).Msg("failed removing session key")
		}
	}
}

// persist writes the session through to the store. Failures are logged and
// otherwise ignored.
func (s *SessionService) persist(c context.Context, user response.User, token string) {
	logger := zerolog.Ctx(c)

	if err := s.store.Set(c, storage.KeyToken, token); err != nil {
		logger.Error().Err(err).Str(log.KeyStorageKey, storage.KeyToken).Msg("failed persisting token")
	}
	b, err := json.Marshal(user)
	if err != nil {
		logger.Error().Err(err).Msg("failed encoding user")
		return
	}
	if err := s.store.Set(c, storage.KeyUser, string(b)); err != nil {
		logger.Error().Err(err).Str(log.KeyStorageKey, storage.KeyUser).Msg("failed persisting user")
	}
}
