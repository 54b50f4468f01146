package models

import (
	"errors"
	"fmt"
)

// Client-facing failures of the handshake and item loading. Each maps to a 400 response.
var (
	ErrStateMismatch      = errors.New("state does not match")
	ErrNoCredentials      = errors.New("no credentials found")
	ErrMissingAccessToken = errors.New("no access token found in credentials")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrTokenExchange      = errors.New("token exchange failed")
)

// ProviderDeniedError is returned when the authorization server redirects back with an error,
// typically because the user declined consent.
type ProviderDeniedError struct {
	Code        string
	Description string
}

func (e *ProviderDeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("authorization denied: %s", e.Code)
	}
	return e.Description
}

// PageFetchError reports a listing page that could not be fetched.
// Records from earlier pages are still returned alongside it.
type PageFetchError struct {
	Page       int
	After      string
	StatusCode int
	Body       string
	Err        error
}

func (e *PageFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("fetch page %d: status %d: %s", e.Page, e.StatusCode, e.Body)
}

func (e *PageFetchError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err should be surfaced to the caller as a 400.
func IsClientError(err error) bool {
	var denied *ProviderDeniedError
	if errors.As(err, &denied) {
		return true
	}
	for _, target := range []error{
		ErrStateMismatch,
		ErrNoCredentials,
		ErrMissingAccessToken,
		ErrInvalidRequest,
		ErrTokenExchange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorCode returns the OAuth-style error code used in JSON error bodies.
func ErrorCode(err error) string {
	var denied *ProviderDeniedError
	switch {
	case errors.As(err, &denied):
		return "access_denied"
	case errors.Is(err, ErrStateMismatch):
		return "invalid_state"
	case errors.Is(err, ErrNoCredentials):
		return "no_credentials"
	case errors.Is(err, ErrMissingAccessToken):
		return "invalid_credentials"
	case errors.Is(err, ErrTokenExchange):
		return "invalid_grant"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "server_error"
	}
}
