// Package api implements the authenticated HTTP client for the Book Explorer
// backend. Every request carries the stored access token as a bearer header;
// a 401 response triggers a single coordinated token refresh followed by one
// replay of the original request. Requests to the token endpoints themselves
// are never refreshed, which breaks the potential refresh loop.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/adna-tk/book-explorer/internal/tokenstore"
)

const defaultTimeout = 30 * time.Second

// tokenPathPrefix covers both /auth/token/ and /auth/token/refresh/.
// A 401 from either is a final answer, not a refresh trigger.
const tokenPathPrefix = "/auth/token"

// Client is the session-aware HTTP client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	log        zerolog.Logger

	// refresh de-duplicates concurrent token refreshes: the first caller
	// performs the network call and everyone else waits on its outcome.
	refresh singleflight.Group

	onSessionEnded func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSessionEndedHandler registers fn to run once per unrecoverable refresh
// failure, after both tokens have been cleared. The handler is expected to
// guard against redirect loops itself (e.g. by checking whether the login
// view is already active).
func WithSessionEndedHandler(fn func()) Option {
	return func(c *Client) { c.onSessionEnded = fn }
}

// New creates a client for the API at baseURL using tokens for credentials.
func New(baseURL string, tokens tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes a JSON request against the API. A non-nil body is encoded as
// JSON; a non-nil out receives the decoded response body. Errors are typed:
// *AuthError, *NotFoundError, *APIError or *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = data
	}

	correlationID := uuid.New().String()
	logger := c.log.With().
		Str("method", method).
		Str("path", path).
		Str("correlationId", correlationID).
		Logger()

	// Proactive refresh: when the stored access token is already past its
	// expiry there is no point sending it. A terminal failure here has
	// already ended the session, so it must surface now; retrying would
	// only hit the no-refresh-token branch and end the session twice.
	// Transient failures fall through to the reactive 401 path.
	if pair, ok := c.tokens.Load(); ok && !isTokenPath(path) && accessTokenExpired(pair.Access) {
		logger.Debug().Msg("access token expired, refreshing before request")
		if _, err := c.refreshAccess(ctx); err != nil && errors.Is(err, ErrSessionEnded) {
			return err
		}
	}

	resp, respBody, err := c.send(ctx, method, path, query, payload, correlationID)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isTokenPath(path) {
		logger.Warn().Msg("401 response, refreshing token and retrying once")

		if _, err := c.refreshAccess(ctx); err != nil {
			return err
		}

		// Replay exactly once with the new token.
		resp, respBody, err = c.send(ctx, method, path, query, payload, correlationID)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			logger.Warn().Msg("401 after refresh, giving up")
			return &AuthError{Message: errorMessage(respBody)}
		}
	}

	if err := statusError(resp.StatusCode, path, respBody); err != nil {
		return err
	}

	if out != nil && resp.StatusCode != http.StatusNoContent && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &NetworkError{Op: "decode " + path, Err: err}
		}
	}

	logger.Debug().Int("status", resp.StatusCode).Msg("request completed")
	return nil
}

// send builds and executes one request attempt. The bearer token is read
// fresh from the store on every attempt so a replay after refresh picks up
// the new access token.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, correlationID string) (*http.Response, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, nil, &NetworkError{Op: "build " + path, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)
	if pair, ok := c.tokens.Load(); ok && pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Op: "read " + path, Err: err}
	}

	return resp, respBody, nil
}

// statusError maps a non-2xx status to a typed error.
func statusError(status int, path string, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized:
		return &AuthError{Message: errorMessage(body)}
	case status == http.StatusNotFound:
		return &NotFoundError{Path: path}
	default:
		return &APIError{Status: status, Message: errorMessage(body)}
	}
}

func isTokenPath(path string) bool {
	return strings.HasPrefix(path, tokenPathPrefix)
}
