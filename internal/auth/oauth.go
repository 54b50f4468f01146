package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/brizzai/hubspot-connect/internal/auth/constants"
	"github.com/brizzai/hubspot-connect/internal/auth/credentials"
	"github.com/brizzai/hubspot-connect/internal/auth/handlers"
	"github.com/brizzai/hubspot-connect/internal/auth/middleware"
	"github.com/brizzai/hubspot-connect/internal/auth/providers"
	"github.com/brizzai/hubspot-connect/internal/auth/state"
	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CloseWindowHTML is returned to the popup that hosted the provider redirect.
const CloseWindowHTML = `<!DOCTYPE html>
<html>
<head><title>Authorization complete</title></head>
<body>
<script>
window.close();
</script>
</body>
</html>
`

// Service drives the authorize and callback steps of the handshake
type Service struct {
	provider    providers.Provider
	states      *state.Manager
	credentials *credentials.Cache
	cors        []string
	handler     *handlers.Handler
}

// NewService creates a new OAuth service. loader serves the item route and may be nil.
func NewService(cfg *config.Config, provider providers.Provider, s store.Store, loader handlers.ItemLoader) *Service {
	svc := &Service{
		provider:    provider,
		states:      state.NewManager(s, provider.Name(), cfg.HubSpot.StateTTL),
		credentials: credentials.NewCache(s, provider.Name(), cfg.HubSpot.CredentialsTTL),
		cors:        cfg.CORS.AllowOrigins,
	}
	svc.handler = handlers.NewHandler(svc, loader)
	return svc
}

// Authorize starts a handshake for the pair and returns the URL to send the user to.
func (s *Service) Authorize(ctx context.Context, userID, orgID string) (string, error) {
	userID, orgID, err := normalizePair(userID, orgID)
	if err != nil {
		return "", err
	}

	encodedState, challenge, err := s.states.Begin(ctx, userID, orgID)
	if err != nil {
		return "", err
	}

	logger.Info("Authorization started",
		zap.String("provider", s.provider.Name()),
		zap.String("org_id", orgID),
		zap.String("user_id", userID),
	)
	return s.provider.AuthCodeURL(encodedState, challenge), nil
}

// HandleCallback redeems the provider redirect and caches the exchanged tokens.
// On success it returns CloseWindowHTML.
func (s *Service) HandleCallback(ctx context.Context, query url.Values) (string, error) {
	if code := query.Get(constants.ParamError); code != "" {
		desc := query.Get(constants.ParamErrorDescription)
		logger.Warn("Authorization denied by provider",
			zap.String("error", code),
			zap.String("error_description", desc),
		)
		return "", &models.ProviderDeniedError{Code: code, Description: desc}
	}

	code := query.Get(constants.ParamCode)
	encodedState := query.Get(constants.ParamState)
	if code == "" || encodedState == "" {
		return "", fmt.Errorf("%w: code and state are required", models.ErrInvalidRequest)
	}

	st, verifier, err := s.states.ValidateAndConsume(ctx, encodedState)
	if err != nil {
		return "", err
	}

	// The cleanup must finish even when the exchange fails, so the group
	// does not share a cancelling context.
	var creds json.RawMessage
	var g errgroup.Group
	g.Go(func() error {
		var err error
		creds, err = s.provider.ExchangeCode(ctx, code, verifier)
		return err
	})
	g.Go(func() error {
		if err := s.states.Discard(ctx, st.UserID, st.OrgID); err != nil {
			logger.Warn("Failed to discard authorization state",
				zap.String("org_id", st.OrgID),
				zap.String("user_id", st.UserID),
				zap.Error(err),
			)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Token exchange failed",
			zap.String("org_id", st.OrgID),
			zap.String("user_id", st.UserID),
			zap.Error(err),
		)
		return "", err
	}

	if err := s.credentials.Save(ctx, st.UserID, st.OrgID, creds); err != nil {
		return "", err
	}

	logger.Info("Authorization completed",
		zap.String("provider", s.provider.Name()),
		zap.String("org_id", st.OrgID),
		zap.String("user_id", st.UserID),
	)
	return CloseWindowHTML, nil
}

// Credentials hands out the cached tokens for the pair exactly once.
func (s *Service) Credentials(ctx context.Context, userID, orgID string) (json.RawMessage, error) {
	userID, orgID, err := normalizePair(userID, orgID)
	if err != nil {
		return nil, err
	}
	return s.credentials.GetAndConsume(ctx, userID, orgID)
}

// normalizePair trims the ids and rejects blanks and ids containing the store
// key separator, which would let one tenant address another tenant's entries.
func normalizePair(userID, orgID string) (string, string, error) {
	userID, orgID = strings.TrimSpace(userID), strings.TrimSpace(orgID)
	if userID == "" || orgID == "" {
		return "", "", fmt.Errorf("%w: user_id and org_id are required", models.ErrInvalidRequest)
	}
	if err := store.ValidateKeyParts(orgID, userID); err != nil {
		return "", "", fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	return userID, orgID, nil
}

// RegisterRoutes registers the integration routes under constants.RoutePrefix
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(constants.RoutePrefix+"/authorize", s.handler.HandleAuthorize)
	mux.HandleFunc(constants.RoutePrefix+"/oauth2callback", s.handler.HandleCallback)
	mux.HandleFunc(constants.RoutePrefix+"/credentials", s.handler.HandleCredentials)
	mux.HandleFunc(constants.RoutePrefix+"/load", s.handler.HandleLoad)
}

// WrapWithMiddleware wraps the mux with request logging and CORS
func (s *Service) WrapWithMiddleware(handler http.Handler) http.Handler {
	return middleware.RequestLogger(middleware.CORSWithOrigins(s.cors)(handler))
}

// GetProvider returns the configured auth provider
func (s *Service) GetProvider() providers.Provider {
	return s.provider
}
