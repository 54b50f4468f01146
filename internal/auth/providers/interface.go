package providers

import (
	"context"
	"encoding/json"
)

// Provider defines the interface that all OAuth providers must implement
type Provider interface {
	// Name namespaces store keys and routes for the provider
	Name() string

	// AuthCodeURL returns the authorization URL carrying state and the S256 challenge
	AuthCodeURL(state, codeChallenge string) string

	// ExchangeCode exchanges an authorization code for the provider's raw token response
	ExchangeCode(ctx context.Context, code, codeVerifier string) (json.RawMessage, error)
}
