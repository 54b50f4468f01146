package requester

import "github.com/brizzai/hubspot-connect/internal/config"

// EndpointConfig is the remote service a set of routes is called against.
type EndpointConfig struct {
	BaseURL string            `json:"base_url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// RouteConfig holds the configuration for a specific route
type RouteConfig struct {
	Path        string            `json:"path"`
	Method      string            `json:"method"`
	Description string            `json:"description,omitempty"`
	Headers     map[string]string `json:"headers"`
	// Method specific configurations
	MethodConfig MethodConfig `json:"method_config"`
}

// BodyEncoding selects how params are written into a request body.
type BodyEncoding string

const (
	// BodyJSON sends params["body"] as application/json
	BodyJSON BodyEncoding = "json"
	// BodyForm sends every param as application/x-www-form-urlencoded
	BodyForm BodyEncoding = "form"
)

// MethodConfig holds method-specific configurations
type MethodConfig struct {
	// For POST, PUT and PATCH requests. Defaults to BodyJSON.
	BodyEncoding BodyEncoding `json:"body_encoding,omitempty"`

	// Upper bound for the response body, DefaultMaxResponseBytes when zero
	MaxResponseBytes int64 `json:"max_response_bytes,omitempty"`
}

// Credentials configures an HTTPAuthManager.
type Credentials struct {
	Type     config.AuthType
	Username string
	Password string
	Token    string
}
