package stubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userKey contextKey = "user"

// issueToken mints an HS256 JWT of the given type (access or refresh).
func (s *Server) issueToken(user userRecord, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"token_type": tokenType,
		"exp":        time.Now().Add(ttl).Unix(),
		"iat":        time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

// parseToken validates a JWT and returns its owner. ok is false for
// expired, malformed or wrong-type tokens.
func (s *Server) parseToken(raw, wantType string) (userRecord, bool) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	if err != nil || !token.Valid {
		return userRecord{}, false
	}
	if claims["token_type"] != wantType {
		return userRecord{}, false
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return userRecord{}, false
	}
	return s.userByID(int(id))
}

func (s *Server) userByID(id int) (userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return userRecord{}, false
}

// handleToken implements POST /auth/token/.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.hit("token")

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	var user userRecord
	found := false
	for _, u := range s.users {
		if u.Username == creds.Username && u.Password == creds.Password {
			user, found = u, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, err := s.issueToken(user, "access", s.cfg.AccessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	refresh, err := s.issueToken(user, "refresh", s.cfg.RefreshTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

// handleRefresh implements POST /auth/token/refresh/.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.hit("refresh")

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeDetail(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	user, ok := s.parseToken(req.Refresh, "refresh")
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	access, err := s.issueToken(user, "access", s.cfg.AccessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}

	resp := map[string]string{"access": access}
	if s.cfg.RotateRefresh {
		rotated, err := s.issueToken(user, "refresh", s.cfg.RefreshTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token signing failed")
			return
		}
		resp["refresh"] = rotated
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireAuth validates the bearer token and stores the user in context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		user, ok := s.parseToken(raw, "access")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func requestUser(r *http.Request) userRecord {
	user, _ := r.Context().Value(userKey).(userRecord)
	return user
}

// handleMe implements GET /auth/me/.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.hit("me")

	user := requestUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}
