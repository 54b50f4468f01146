package constants

import "time"

const (
	// ProviderHubSpot namespaces store keys and routes
	ProviderHubSpot = "hubspot"

	// DefaultStateTTL bounds how long an unfinished handshake stays claimable
	DefaultStateTTL = 600 * time.Second

	// DefaultCredentialsTTL bounds how long exchanged tokens wait for pickup
	DefaultCredentialsTTL = 600 * time.Second

	// TokenType for Bearer authentication
	TokenType = "Bearer"

	// AuthHeaderName is the name of the Authorization header
	AuthHeaderName = "Authorization"

	// PKCEMethodS256 is the only challenge method sent to providers
	PKCEMethodS256 = "S256"

	// RoutePrefix is where integration routes are mounted
	RoutePrefix = "/integrations/" + ProviderHubSpot
)

// Store key kinds
const (
	KindState       = "state"
	KindVerifier    = "verifier"
	KindCredentials = "credentials"
)

// Query and form parameter names
const (
	ParamUserID           = "user_id"
	ParamOrgID            = "org_id"
	ParamCode             = "code"
	ParamState            = "state"
	ParamError            = "error"
	ParamErrorDescription = "error_description"
	ParamCredentials      = "credentials"
)
