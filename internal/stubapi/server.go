// Package stubapi is an in-memory implementation of the Book Explorer HTTP
// contract. It backs the package tests end to end and the `bookx demo-api`
// command for offline use. Data lives in process memory; restarting the
// server resets it to the seed fixtures.
package stubapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultPageSize   = 12
	maxPageSize       = 100
)

// Config tunes the stub's behavior. The zero value gives production-like
// defaults.
type Config struct {
	// AccessTTL is the access token lifetime. Tests shrink it (or set it
	// negative) to exercise the refresh protocol.
	AccessTTL time.Duration

	// RefreshTTL is the refresh token lifetime.
	RefreshTTL time.Duration

	// RotateRefresh makes the refresh endpoint also return a new refresh
	// token, exercising the client's rotation handling.
	RotateRefresh bool

	// Secret signs the issued JWTs.
	Secret []byte

	Logger zerolog.Logger
}

type userRecord struct {
	ID       int
	Username string
	Email    string
	Password string
}

type noteRecord struct {
	ID        int
	BookID    int
	UserID    int
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Server implements the backend contract over in-memory fixtures.
type Server struct {
	cfg    Config
	router chi.Router
	log    zerolog.Logger

	mu       sync.Mutex
	users    []userRecord
	books    []bookRecord
	notes    map[int]noteRecord
	nextNote int
	hits     map[string]int
}

// New creates a stub server seeded with the standard fixtures.
func New(cfg Config) *Server {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte("book-explorer-stub-secret")
	}

	s := &Server{
		cfg:      cfg,
		log:      cfg.Logger,
		users:    seedUsers(),
		books:    seedBooks(),
		notes:    make(map[int]noteRecord),
		nextNote: 1,
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Post("/auth/token/", s.handleToken)
	r.Post("/auth/token/refresh/", s.handleRefresh)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/me/", s.handleMe)
		r.Get("/books/{bookID}/notes/", s.handleListNotes)
		r.Post("/books/{bookID}/notes/", s.handleCreateNote)
		r.Put("/books/notes/{noteID}/", s.handleUpdateNote)
		r.Delete("/books/notes/{noteID}/", s.handleDeleteNote)
	})
	r.Get("/books/", s.handleListBooks)
	r.Get("/books/choices/", s.handleChoices)
	r.Get("/books/{bookID}/", s.handleGetBook)
	s.router = r

	return s
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hits reports how many times the named endpoint was handled. Tests use it
// to assert cache hits and refresh counts.
func (s *Server) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}

func (s *Server) hit(name string) {
	s.mu.Lock()
	s.hits[name]++
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeDetail emits the bare {"detail": ...} shape the auth endpoints use.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError emits the API's exception envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"status_code": status,
			"message":     message,
		},
	})
}
