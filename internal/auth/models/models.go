package models

// AuthorizationState is the anti-CSRF payload stored per (org, user) and echoed
// through the provider redirect as base64url(JSON).
type AuthorizationState struct {
	State  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// PKCE pairs a verifier held server-side with the challenge sent to the provider.
type PKCE struct {
	CodeVerifier        string
	CodeChallenge       string
	CodeChallengeMethod string
}
