package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSessionEnded signals that the session could not be kept alive: the
// refresh token was missing, expired or rejected, and both tokens have been
// cleared. The navigation collaborator decides whether a redirect to the
// login entry point is needed.
var ErrSessionEnded = errors.New("session ended")

// AuthError indicates an authentication failure the user can recover from
// by logging in again (bad credentials, expired refresh token, or a request
// that still got 401 after one refresh-and-retry).
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

// NotFoundError indicates the requested resource does not exist (404).
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %s not found", e.Path)
}

// APIError carries a non-auth HTTP error response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// NetworkError indicates a transport-level failure (connection refused,
// timeout, unparsable response). These are transient and are not retried
// beyond the single refresh-retry the client performs for 401s.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// errorMessage extracts a human-readable message from an error response
// body. Priority is fixed: the `detail` field (what the token endpoints
// emit), then the nested `error.message` shape used by the API's exception
// envelope, then a flat `message` field. Returns "" when nothing matches.
func errorMessage(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	switch {
	case parsed.Detail != "":
		return parsed.Detail
	case parsed.Error.Message != "":
		return parsed.Error.Message
	default:
		return parsed.Message
	}
}
