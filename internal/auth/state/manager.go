// Package state issues and redeems the anti-CSRF state and PKCE verifier
// that bind an OAuth callback to the authorize request that started it.
package state

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brizzai/hubspot-connect/internal/auth/constants"
	authmodels "github.com/brizzai/hubspot-connect/internal/auth/models"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/store"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const stateTokenBytes = 32

// Manager keeps one live state/verifier pair per (org, user) in the store.
type Manager struct {
	store    store.Store
	provider string
	ttl      time.Duration
}

// NewManager creates a Manager for the given provider namespace.
func NewManager(s store.Store, provider string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = constants.DefaultStateTTL
	}
	return &Manager{store: s, provider: provider, ttl: ttl}
}

// Begin stores a fresh state token and PKCE verifier for the pair and returns
// the encoded state for the redirect together with the S256 code challenge.
// Calling Begin again for the same pair replaces the previous handshake.
func (m *Manager) Begin(ctx context.Context, userID, orgID string) (encodedState, codeChallenge string, err error) {
	if err := store.ValidateKeyParts(orgID, userID); err != nil {
		return "", "", fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	token, err := randomToken()
	if err != nil {
		return "", "", err
	}
	st := authmodels.AuthorizationState{State: token, UserID: userID, OrgID: orgID}
	payload, err := json.Marshal(st)
	if err != nil {
		return "", "", fmt.Errorf("encode state: %w", err)
	}

	pkce := NewPKCE()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.store.Set(gctx, m.key(constants.KindState, orgID, userID), string(payload), m.ttl)
	})
	g.Go(func() error {
		return m.store.Set(gctx, m.key(constants.KindVerifier, orgID, userID), pkce.CodeVerifier, m.ttl)
	})
	if err := g.Wait(); err != nil {
		return "", "", fmt.Errorf("save authorization state: %w", err)
	}

	logger.Debug("Authorization state issued",
		zap.String("provider", m.provider),
		zap.String("org_id", orgID),
		zap.String("user_id", userID),
		zap.Duration("ttl", m.ttl),
	)
	return base64.URLEncoding.EncodeToString(payload), pkce.CodeChallenge, nil
}

// ValidateAndConsume checks the echoed state against the stored one and, on a
// match, claims both entries so the state cannot be replayed. It returns the
// decoded state and the PKCE verifier for the token exchange.
//
// A mismatched attempt leaves the stored entries in place; they expire on
// their own. The state is claimed with a compare-and-delete, so when two
// callbacks race only one wins, and a handshake restarted by a concurrent
// Begin is never removed by the older callback.
func (m *Manager) ValidateAndConsume(ctx context.Context, encodedState string) (authmodels.AuthorizationState, string, error) {
	echoed, err := Decode(encodedState)
	if err != nil {
		logger.Warn("Undecodable state in callback", zap.Error(err))
		return authmodels.AuthorizationState{}, "", models.ErrStateMismatch
	}

	stateKey := m.key(constants.KindState, echoed.OrgID, echoed.UserID)
	verifierKey := m.key(constants.KindVerifier, echoed.OrgID, echoed.UserID)

	saved, err := m.store.Get(ctx, stateKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return authmodels.AuthorizationState{}, "", models.ErrStateMismatch
		}
		return authmodels.AuthorizationState{}, "", fmt.Errorf("load state: %w", err)
	}
	if !sameToken(saved, echoed.State) {
		logger.Warn("State token mismatch",
			zap.String("org_id", echoed.OrgID),
			zap.String("user_id", echoed.UserID),
		)
		return authmodels.AuthorizationState{}, "", models.ErrStateMismatch
	}

	claimed, err := m.store.DeleteIfEqual(ctx, stateKey, saved)
	if err != nil {
		return authmodels.AuthorizationState{}, "", fmt.Errorf("claim state: %w", err)
	}
	if !claimed {
		return authmodels.AuthorizationState{}, "", models.ErrStateMismatch
	}

	verifier, err := m.store.Take(ctx, verifierKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return authmodels.AuthorizationState{}, "", models.ErrStateMismatch
		}
		return authmodels.AuthorizationState{}, "", fmt.Errorf("claim verifier: %w", err)
	}

	return echoed, verifier, nil
}

// Discard removes any state and verifier left for the pair. It is idempotent.
func (m *Manager) Discard(ctx context.Context, userID, orgID string) error {
	return m.store.Delete(ctx,
		m.key(constants.KindState, orgID, userID),
		m.key(constants.KindVerifier, orgID, userID),
	)
}

func (m *Manager) key(kind, orgID, userID string) string {
	return store.Key(m.provider, kind, orgID, userID)
}

// Decode parses the base64url(JSON) state, accepting padded and unpadded input.
func Decode(encoded string) (authmodels.AuthorizationState, error) {
	var st authmodels.AuthorizationState
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return st, errors.New("empty state")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return st, fmt.Errorf("decode state: %w", err)
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("unmarshal state: %w", err)
	}
	if st.State == "" {
		return st, errors.New("state token missing")
	}
	if err := store.ValidateKeyParts(st.OrgID, st.UserID); err != nil {
		return st, err
	}
	return st, nil
}

// NewPKCE generates a verifier and its S256 challenge.
func NewPKCE() authmodels.PKCE {
	verifier := oauth2.GenerateVerifier()
	return authmodels.PKCE{
		CodeVerifier:        verifier,
		CodeChallenge:       oauth2.S256ChallengeFromVerifier(verifier),
		CodeChallengeMethod: constants.PKCEMethodS256,
	}
}

func randomToken() (string, error) {
	raw := make([]byte, stateTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func sameToken(savedJSON, echoed string) bool {
	var saved authmodels.AuthorizationState
	if err := json.Unmarshal([]byte(savedJSON), &saved); err != nil {
		return false
	}
	return saved.State != "" && subtle.ConstantTimeCompare([]byte(saved.State), []byte(echoed)) == 1
}
