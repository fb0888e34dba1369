package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/storage"
	"github.com/Alturino/storefront/internal/testutil"
	"github.com/Alturino/storefront/session/pkg/request"
	"github.com/Alturino/storefront/session/pkg/response"
)

func newSession(t *testing.T) (*SessionService, storage.Store, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)
	store := storage.NewMemoryStore()
	return NewSessionService(store, gateway.New(backend.URL())), store, backend
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name          string
		param         request.Login
		expectedErr   error
		expectedAdmin bool
		expectedCalls int
	}{
		{
			name:          "given admin credentials should login as admin",
			param:         request.Login{Email: testutil.AdminEmail, Password: testutil.AdminPassword},
			expectedAdmin: true,
			expectedCalls: 1,
		},
		{
			name:          "given user credentials should login as user",
			param:         request.Login{Email: testutil.UserEmail, Password: testutil.UserPassword},
			expectedCalls: 1,
		},
		{
			name:          "given wrong password should fail",
			param:         request.Login{Email: testutil.UserEmail, Password: "wrong"},
			expectedErr:   inErrors.ErrLoginFailed,
			expectedCalls: 1,
		},
		{
			name:          "given malformed email should fail without request",
			param:         request.Login{Email: "not-an-email", Password: "secret"},
			expectedErr:   inErrors.ErrLoginFailed,
			expectedCalls: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.Context()
			session, store, backend := newSession(t)

			user, err := session.Login(c, tt.param)
			assert.Equal(t, tt.expectedCalls, backend.Count(http.MethodPost, gateway.PathLogin))
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.False(t, session.IsAuthenticated())
				assert.Empty(t, session.Token())
				_, err := store.Get(c, storage.KeyToken)
				assert.ErrorIs(t, err, inErrors.ErrKeyNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.param.Email, user.Email)
			assert.True(t, session.IsAuthenticated())
			assert.Equal(t, tt.expectedAdmin, session.IsAdmin())
			assert.NotEmpty(t, session.Token())

			token, err := store.Get(c, storage.KeyToken)
			require.NoError(t, err)
			assert.Equal(t, session.Token(), token)
			raw, err := store.Get(c, storage.KeyUser)
			require.NoError(t, err)
			persisted := response.User{}
			require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
			assert.Equal(t, user, persisted)
		})
	}
}

func TestLoginFailureCarriesApiMessage(t *testing.T) {
	session, _, _ := newSession(t)

	_, err := session.Login(testutil.Context(), request.Login{Email: testutil.UserEmail, Password: "wrong"})
	require.ErrorIs(t, err, inErrors.ErrLoginFailed)
	assert.Contains(t, err.Error(), testutil.LoginFailedMessage)
}

func TestLoginFailureKeepsPreviousSession(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "given bad request should keep session", status: http.StatusBadRequest},
		{name: "given unauthorized should keep session", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.Context()
			session, store, backend := newSession(t)
			invalidated := 0
			session.OnInvalidated(func(context.Context) { invalidated++ })

			_, err := session.Login(c, request.Login{Email: testutil.UserEmail, Password: testutil.UserPassword})
			require.NoError(t, err)
			token := session.Token()
			backend.LoginFailureStatus(tt.status)

			_, err = session.Login(c, request.Login{Email: testutil.AdminEmail, Password: "wrong"})
			require.ErrorIs(t, err, inErrors.ErrLoginFailed)
			assert.NotErrorIs(t, err, inErrors.ErrUnauthorized)
			assert.Contains(t, err.Error(), testutil.LoginFailedMessage)
			user, ok := session.User()
			assert.True(t, ok)
			assert.Equal(t, testutil.UserEmail, user.Email)
			assert.Equal(t, token, session.Token())
			persisted, err := store.Get(c, storage.KeyToken)
			require.NoError(t, err)
			assert.Equal(t, token, persisted)
			assert.Zero(t, invalidated)
		})
	}
}

func TestLogout(t *testing.T) {
	c := testutil.Context()
	session, store, _ := newSession(t)

	_, err := session.Login(c, request.Login{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)

	session.Logout(c)

	assert.False(t, session.IsAuthenticated())
	assert.False(t, session.IsAdmin())
	assert.Empty(t, session.Token())
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		_, err := store.Get(c, key)
		assert.ErrorIs(t, err, inErrors.ErrKeyNotFound)
	}
}

func TestLogoutWhenAnonymous(t *testing.T) {
	session, _, _ := newSession(t)

	session.Logout(testutil.Context())

	assert.False(t, session.IsAuthenticated())
}

func TestUnauthorizedResponseInvalidatesSession(t *testing.T) {
	c := testutil.Context()
	backend := testutil.NewBackend()
	defer backend.Close()
	store := storage.NewMemoryStore()
	gw := gateway.New(backend.URL())
	session := NewSessionService(store, gw)

	invalidated := 0
	session.OnInvalidated(func(context.Context) { invalidated++ })

	_, err := session.Login(c, request.Login{Email: testutil.UserEmail, Password: testutil.UserPassword})
	require.NoError(t, err)

	backend.RevokeSessions()
	err = gw.Get(c, gateway.PathOrderHistory, nil, nil)
	require.ErrorIs(t, err, inErrors.ErrUnauthorized)

	assert.Equal(t, 1, invalidated)
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Token())
	_, err = store.Get(c, storage.KeyToken)
	assert.ErrorIs(t, err, inErrors.ErrKeyNotFound)
}

func TestHydrate(t *testing.T) {
	user := response.User{Name: "Jane Doe", Email: testutil.UserEmail, Role: response.RoleUser}
	rawUser, err := json.Marshal(user)
	require.NoError(t, err)
	valid := testutil.IssueToken(testutil.UserEmail, time.Hour)

	tests := []struct {
		name          string
		persisted     map[string]string
		expectedAuth  bool
		expectedToken string
		expectedClear bool
	}{
		{
			name:          "given valid jwt should restore session",
			persisted:     map[string]string{storage.KeyToken: valid, storage.KeyUser: string(rawUser)},
			expectedAuth:  true,
			expectedToken: valid,
		},
		{
			name:          "given opaque token should restore session",
			persisted:     map[string]string{storage.KeyToken: "opaque", storage.KeyUser: string(rawUser)},
			expectedAuth:  true,
			expectedToken: "opaque",
		},
		{
			name:          "given expired jwt should discard session",
			persisted:     map[string]string{storage.KeyToken: testutil.IssueToken(testutil.UserEmail, -time.Hour), storage.KeyUser: string(rawUser)},
			expectedClear: true,
		},
		{
			name:          "given corrupt user should discard session",
			persisted:     map[string]string{storage.KeyToken: "opaque", storage.KeyUser: "{not json"},
			expectedClear: true,
		},
		{
			name:      "given token without user should stay anonymous",
			persisted: map[string]string{storage.KeyToken: "opaque"},
		},
		{
			name:      "given empty store should stay anonymous",
			persisted: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testutil.Context()
			session, store, _ := newSession(t)
			for k, v := range tt.persisted {
				require.NoError(t, store.Set(c, k, v))
			}

			session.Hydrate(c)

			assert.Equal(t, tt.expectedAuth, session.IsAuthenticated())
			assert.Equal(t, tt.expectedToken, session.Token())
			if tt.expectedAuth {
				actual, ok := session.User()
				assert.True(t, ok)
				assert.Equal(t, user, actual)
			}
			if tt.expectedClear {
				for _, key := range []string{storage.KeyToken, storage.KeyUser} {
					_, err := store.Get(c, key)
					assert.ErrorIs(t, err, inErrors.ErrKeyNotFound)
				}
			}
		})
	}
}

func TestHydrateAfterLogin(t *testing.T) {
	c := testutil.Context()
	backend := testutil.NewBackend()
	defer backend.Close()
	store := storage.NewMemoryStore()

	first := NewSessionService(store, gateway.New(backend.URL()))
	expected, err := first.Login(c, request.Login{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)

	second := NewSessionService(store, gateway.New(backend.URL()))
	second.Hydrate(c)

	actual, ok := second.User()
	require.True(t, ok)
	assert.Equal(t, expected, actual)
	assert.True(t, second.IsAdmin())
	assert.Equal(t, first.Token(), second.Token())
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name        string
		param       request.Register
		expected    string
		expectedErr error
	}{
		{
			name: "given new user should register",
			param: request.Register{
				Name:          "John",
				Email:         "john@grocery.com",
				Password:      "secret1",
				Address:       "2 Market St",
				ContactNumber: "0811",
			},
			expected: testutil.RegisteredMessage,
		},
		{
			name: "given existing email should fail",
			param: request.Register{
				Name:     "Jane",
				Email:    testutil.UserEmail,
				Password: "secret1",
			},
			expectedErr: inErrors.ErrRegisterFailed,
		},
		{
			name:        "given short password should fail validation",
			param:       request.Register{Name: "John", Email: "john@grocery.com", Password: "123"},
			expectedErr: inErrors.ErrRegisterFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, _, _ := newSession(t)

			actual, err := session.Register(testutil.Context(), tt.param)
			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
			assert.False(t, session.IsAuthenticated())
		})
	}
}
