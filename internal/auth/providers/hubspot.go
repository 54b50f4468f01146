package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/hubspot-connect/internal/auth/constants"
	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/requester"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// HubSpotProvider implements Provider for HubSpot's OAuth 2.0 endpoints.
type HubSpotProvider struct {
	oauth2Config *oauth2.Config
	clientAuth   config.ClientAuth
	exchange     requester.RouteExecutor
}

var _ Provider = (*HubSpotProvider)(nil)

// NewHubSpotProvider builds the authorization URL with oauth2.Config and posts
// the token exchange itself so the token response is kept verbatim.
func NewHubSpotProvider(cfg *config.HubSpotConfig, r *requester.HTTPRequester) (*HubSpotProvider, error) {
	tokenURL, err := url.Parse(cfg.TokenURL)
	if err != nil || tokenURL.Scheme == "" || tokenURL.Host == "" {
		return nil, fmt.Errorf("invalid hubspot.token_url %q", cfg.TokenURL)
	}

	p := &HubSpotProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		clientAuth: cfg.ClientAuth,
	}

	var authMgr requester.AuthManager = requester.NoAuth()
	if cfg.ClientAuth == config.ClientAuthBasic {
		authMgr = requester.BasicAuth(cfg.ClientID, cfg.ClientSecret)
	}

	endpoint := &requester.EndpointConfig{BaseURL: tokenURL.Scheme + "://" + tokenURL.Host}
	route := &requester.RouteConfig{
		Path:         tokenURL.Path,
		Method:       http.MethodPost,
		Description:  "OAuth authorization code exchange",
		MethodConfig: requester.MethodConfig{BodyEncoding: requester.BodyForm},
	}
	p.exchange, err = r.BuildRouteExecutor(endpoint, route, authMgr)
	if err != nil {
		return nil, fmt.Errorf("build token route: %w", err)
	}
	return p, nil
}

// Name returns the provider identifier used in store keys and logs.
func (p *HubSpotProvider) Name() string {
	return constants.ProviderHubSpot
}

// AuthCodeURL returns the consent URL carrying the encoded state and the S256 code challenge.
func (p *HubSpotProvider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", constants.PKCEMethodS256),
	)
}

// ExchangeCode redeems the authorization code with the PKCE verifier and
// returns the token endpoint's JSON response unchanged.
func (p *HubSpotProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (json.RawMessage, error) {
	params := map[string]any{
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  p.oauth2Config.RedirectURL,
		"client_id":     p.oauth2Config.ClientID,
		"code_verifier": codeVerifier,
	}
	if p.clientAuth != config.ClientAuthBasic {
		params["client_secret"] = p.oauth2Config.ClientSecret
	}

	resp, err := p.exchange(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("token endpoint: %w", err)
	}
	if !resp.IsSuccess() {
		msg := tokenErrorMessage(resp.Body)
		logger.Warn("Token exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, fmt.Errorf("%w: %s", models.ErrTokenExchange, msg)
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("%w: token response is not JSON", models.ErrTokenExchange)
	}
	return json.RawMessage(resp.Body), nil
}

// tokenErrorMessage extracts a readable reason from either an RFC 6749 error
// body or HubSpot's {status, message} envelope.
func tokenErrorMessage(body []byte) string {
	var e struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Status           string `json:"status"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.ErrorDescription != "":
			return e.ErrorDescription
		case e.Message != "":
			return e.Message
		case e.Error != "":
			return e.Error
		case e.Status != "":
			return e.Status
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return "empty response"
	}
	return text
}
