// Package auth manages the login session: obtaining the token pair, tearing
// it down, and exposing the current user. Authentication state is derived
// from the token store, so every consumer observing the store stays
// consistent without extra bookkeeping.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/adna-tk/book-explorer/internal/api"
	"github.com/adna-tk/book-explorer/internal/querycache"
	"github.com/adna-tk/book-explorer/internal/tokenstore"
)

// fallbackLoginMessage is shown when the server error body carries no
// usable message.
const fallbackLoginMessage = "Invalid username or password"

// currentUserStaleTime is how long a fetched current-user snapshot is
// trusted before the next access refetches it.
const currentUserStaleTime = 5 * time.Minute

// User is the authenticated account as reported by /auth/me/.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

var currentUserKey = querycache.NewKey("auth", "me")

// Manager owns the session lifecycle.
type Manager struct {
	client *api.Client
	tokens tokenstore.Store
	cache  *querycache.Cache
	log    zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a session manager. It watches the token store so that when the
// session ends anywhere (logout, failed refresh), cached per-user state is
// dropped immediately.
func New(client *api.Client, tokens tokenstore.Store, cache *querycache.Cache, opts ...Option) *Manager {
	m := &Manager{
		client: client,
		tokens: tokens,
		cache:  cache,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	tokens.Subscribe(func() {
		if _, ok := tokens.Load(); !ok {
			cache.Clear()
		}
	})

	return m
}

// Login exchanges credentials for a token pair and stores it. The cache is
// cleared first so nothing fetched under a previous account survives into
// the new session. Failures surface as *api.AuthError with a human-readable
// message.
func (m *Manager) Login(ctx context.Context, username, password string) (tokenstore.Pair, error) {
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}

	body := map[string]string{"username": username, "password": password}
	if err := m.client.Do(ctx, http.MethodPost, "/auth/token/", nil, body, &tokens); err != nil {
		return tokenstore.Pair{}, loginError(err)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		return tokenstore.Pair{}, &api.AuthError{Message: fallbackLoginMessage}
	}

	m.cache.Clear()

	pair := tokenstore.Pair{Access: tokens.Access, Refresh: tokens.Refresh}
	if err := m.tokens.Save(pair); err != nil {
		return tokenstore.Pair{}, err
	}

	m.log.Info().Str("username", username).Msg("logged in")
	return pair, nil
}

// Logout clears both tokens and all cached server state. No network call is
// made; the refresh token simply stops being used.
func (m *Manager) Logout() error {
	if err := m.tokens.Clear(); err != nil {
		return err
	}
	m.cache.Clear()
	m.log.Info().Msg("logged out")
	return nil
}

// IsAuthenticated reports whether an access token is present. Derived from
// the store on every call so it cannot go stale.
func (m *Manager) IsAuthenticated() bool {
	pair, ok := m.tokens.Load()
	return ok && pair.Access != ""
}

// CurrentUser returns the authenticated user, cached for five minutes.
// When no session is active the query is skipped and ErrNotAuthenticated
// is returned.
func (m *Manager) CurrentUser(ctx context.Context) (User, error) {
	user, err := querycache.ReadAs(ctx, m.cache, currentUserKey, querycache.Options{
		Disabled:  !m.IsAuthenticated(),
		StaleTime: currentUserStaleTime,
	}, func(ctx context.Context) (User, error) {
		var u User
		if err := m.client.Do(ctx, http.MethodGet, "/auth/me/", nil, nil, &u); err != nil {
			return User{}, err
		}
		return u, nil
	})
	if errors.Is(err, querycache.ErrDisabled) {
		return User{}, ErrNotAuthenticated
	}
	return user, err
}

// ErrNotAuthenticated is returned by queries that require a session when
// none is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// loginError converts a transport error from the token endpoint into the
// user-facing auth error. Network failures pass through untouched.
func loginError(err error) error {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		if authErr.Message == "" {
			return &api.AuthError{Message: fallbackLoginMessage}
		}
		return authErr
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		msg := apiErr.Message
		if msg == "" {
			msg = fallbackLoginMessage
		}
		return &api.AuthError{Message: msg}
	}

	return err
}
