package requester

import (
	"fmt"
	"net/http"

	"github.com/brizzai/hubspot-connect/internal/auth/constants"
	"github.com/brizzai/hubspot-connect/internal/config"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	creds Credentials
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(creds Credentials) *HTTPAuthManager {
	return &HTTPAuthManager{creds: creds}
}

// NoAuth leaves requests untouched.
func NoAuth() *HTTPAuthManager {
	return NewHTTPAuthManager(Credentials{Type: config.AuthTypeNone})
}

// BearerAuth sends token in the Authorization header.
func BearerAuth(token string) *HTTPAuthManager {
	return NewHTTPAuthManager(Credentials{Type: config.AuthTypeBearer, Token: token})
}

// BasicAuth sends HTTP basic credentials.
func BasicAuth(username, password string) *HTTPAuthManager {
	return NewHTTPAuthManager(Credentials{Type: config.AuthTypeBasic, Username: username, Password: password})
}

// ApplyAuth adds authentication to the request
func (a *HTTPAuthManager) ApplyAuth(req *http.Request) error {
	switch a.creds.Type {
	case config.AuthTypeNone, "":
		return nil
	case config.AuthTypeBasic:
		req.SetBasicAuth(a.creds.Username, a.creds.Password)
	case config.AuthTypeBearer:
		if a.creds.Token == "" {
			return fmt.Errorf("bearer auth without a token")
		}
		req.Header.Set(constants.AuthHeaderName, constants.TokenType+" "+a.creds.Token)
	default:
		return fmt.Errorf("unsupported auth type: %s", a.creds.Type)
	}
	return nil
}
