// Package credentials holds exchanged provider tokens until the frontend
// picks them up. Each entry can be read exactly once.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/hubspot-connect/internal/auth/constants"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/store"
	"go.uber.org/zap"
)

// Cache keeps exchanged credentials per (org, user) until they are read once.
type Cache struct {
	store    store.Store
	provider string
	ttl      time.Duration
}

// NewCache creates a Cache in the provider's key namespace. A non-positive ttl
// falls back to the default credentials TTL.
func NewCache(s store.Store, provider string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = constants.DefaultCredentialsTTL
	}
	return &Cache{store: s, provider: provider, ttl: ttl}
}

// Save stores the raw token response for the pair, replacing any earlier entry.
func (c *Cache) Save(ctx context.Context, userID, orgID string, creds json.RawMessage) error {
	if !json.Valid(creds) {
		return fmt.Errorf("credentials are not valid JSON")
	}
	if err := c.store.Set(ctx, c.key(orgID, userID), string(creds), c.ttl); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	logger.Debug("Credentials cached",
		zap.String("provider", c.provider),
		zap.String("org_id", orgID),
		zap.String("user_id", userID),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}

// GetAndConsume returns and deletes the cached credentials in one step.
// A missing, expired or already consumed entry yields models.ErrNoCredentials.
func (c *Cache) GetAndConsume(ctx context.Context, userID, orgID string) (json.RawMessage, error) {
	raw, err := c.store.Take(ctx, c.key(orgID, userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.ErrNoCredentials
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return json.RawMessage(raw), nil
}

func (c *Cache) key(orgID, userID string) string {
	return store.Key(c.provider, constants.KindCredentials, orgID, userID)
}
