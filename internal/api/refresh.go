package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adna-tk/book-explorer/internal/tokenstore"
)

const refreshPath = "/auth/token/refresh/"

// refreshAccess obtains a new access token using the stored refresh token.
// Concurrent callers share a single in-flight refresh; once it resolves the
// slot is cleared so the next 401 starts a fresh attempt.
//
// On an unrecoverable failure (no refresh token, or the refresh endpoint
// rejects it) both tokens are cleared, the session-ended handler fires once,
// and the returned error wraps ErrSessionEnded.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		// The refresh outcome is shared by every concurrent waiter, so it
		// runs detached from the first caller's context: one impatient
		// caller cancelling must not fail the refresh for the rest.
		return c.doRefresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	pair, ok := c.tokens.Load()
	if !ok || pair.Refresh == "" {
		return "", c.endSession("no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{"refresh": pair.Refresh})
	if err != nil {
		return "", &NetworkError{Op: "encode refresh", Err: err}
	}

	// The refresh call goes straight to the transport, bypassing Do: it must
	// never carry the (expired) bearer token nor recurse into 401 handling.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", &NetworkError{Op: "build refresh", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "refresh token", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read refresh response", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		// Refresh token expired or revoked: the session is over.
		return "", c.endSession(errorMessage(body))
	}
	if resp.StatusCode >= 400 {
		return "", &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil || tokens.Access == "" {
		return "", &NetworkError{Op: "decode refresh response", Err: err}
	}

	// The refresh token is only replaced when the server rotates it.
	newPair := tokenstore.Pair{Access: tokens.Access, Refresh: pair.Refresh}
	if tokens.Refresh != "" {
		newPair.Refresh = tokens.Refresh
	}
	if err := c.tokens.Save(newPair); err != nil {
		return "", err
	}

	c.log.Debug().Bool("rotated", tokens.Refresh != "").Msg("token refresh succeeded")
	return tokens.Access, nil
}

// endSession clears both tokens, fires the session-ended handler and returns
// the terminal auth error. Called only from within the single-flight refresh,
// so a burst of concurrent 401s produces exactly one handler invocation.
func (c *Client) endSession(message string) error {
	if err := c.tokens.Clear(); err != nil {
		c.log.Error().Err(err).Msg("failed to clear tokens on session end")
	}
	c.log.Info().Str("reason", message).Msg("session ended")

	if c.onSessionEnded != nil {
		c.onSessionEnded()
	}

	if message == "" {
		message = "session expired"
	}
	return errors.Join(ErrSessionEnded, &AuthError{Message: message})
}

// accessTokenExpired reports whether the access token's exp claim is in the
// past. The token is decoded without verification; tokens that do not parse
// as JWTs are treated as live and left to the server to reject.
func accessTokenExpired(access string) bool {
	if access == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(access, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}
