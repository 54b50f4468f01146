// Package store provides the short-lived key-value storage used for OAuth
// state, PKCE verifiers and exchanged credentials.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("store: key not found")

// ErrInvalidKeyPart is returned for an id that would break the key layout.
var ErrInvalidKeyPart = errors.New("store: id must be non-empty and must not contain ':'")

// KeySeparator joins the segments of a tenant-scoped key.
const KeySeparator = ":"

// Store keeps opaque string values under string keys with mandatory expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Take returns the value and removes the key in one step, so concurrent
	// callers observe at most one successful read.
	Take(ctx context.Context, key string) (string, error)
	// DeleteIfEqual removes the key only while it still holds expected and
	// reports whether it did.
	DeleteIfEqual(ctx context.Context, key, expected string) (bool, error)
}

// Key builds a tenant-scoped key: {provider}_{kind}:{org_id}:{user_id}.
// Callers validate the ids with ValidateKeyParts first; an id containing the
// separator would alias another tenant's key.
func Key(provider, kind, orgID, userID string) string {
	return fmt.Sprintf("%s_%s%s%s%s%s", provider, kind, KeySeparator, orgID, KeySeparator, userID)
}

// ValidateKeyParts checks that every id can be placed in a key unambiguously.
func ValidateKeyParts(ids ...string) error {
	for _, id := range ids {
		if id == "" || strings.Contains(id, KeySeparator) {
			return fmt.Errorf("%w: %q", ErrInvalidKeyPart, id)
		}
	}
	return nil
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("store: ttl must be positive, got %s", ttl)
	}
	return nil
}
