// Package hubspot lists CRM contacts and normalizes them into integration items.
package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/requester"
	"go.uber.org/zap"
)

const (
	contactsPath     = "/crm/v3/objects/contacts"
	DefaultPageSize  = 100
	maxErrorBodySize = 512
)

// Client walks the contacts listing of the CRM API
type Client struct {
	requester  *requester.HTTPRequester
	endpoint   *requester.EndpointConfig
	route      *requester.RouteConfig
	appBaseURL string
	pageSize   int
}

// NewClient creates a contacts client for the configured API
func NewClient(cfg *config.HubSpotConfig, r *requester.HTTPRequester) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	appBaseURL := cfg.AppBaseURL
	if appBaseURL == "" {
		appBaseURL = DefaultAppBaseURL
	}
	return &Client{
		requester:  r,
		endpoint:   &requester.EndpointConfig{BaseURL: cfg.APIBaseURL},
		route:      &requester.RouteConfig{Path: contactsPath, Method: http.MethodGet, Description: "List contacts"},
		appBaseURL: appBaseURL,
		pageSize:   pageSize,
	}
}

// Pages yields the contacts page by page in listing order. Each request depends
// on the previous cursor, so pages are fetched strictly one after another.
// A failed page yields a *models.PageFetchError and ends the sequence.
func (c *Client) Pages(ctx context.Context, accessToken string) iter.Seq2[[]Contact, error] {
	return func(yield func([]Contact, error) bool) {
		exec, err := c.requester.BuildRouteExecutor(c.endpoint, c.route, requester.BearerAuth(accessToken))
		if err != nil {
			yield(nil, &models.PageFetchError{Page: 1, Err: err})
			return
		}

		seen := make(map[string]struct{})
		after := ""
		for page := 1; ; page++ {
			params := map[string]any{"limit": c.pageSize}
			if after != "" {
				params["after"] = after
			}

			resp, err := exec(ctx, params)
			if err != nil {
				yield(nil, &models.PageFetchError{Page: page, After: after, Err: err})
				return
			}
			if !resp.IsSuccess() {
				yield(nil, &models.PageFetchError{
					Page:       page,
					After:      after,
					StatusCode: resp.StatusCode,
					Body:       truncate(string(resp.Body), maxErrorBodySize),
				})
				return
			}

			var body contactsPage
			if err := json.Unmarshal(resp.Body, &body); err != nil {
				yield(nil, &models.PageFetchError{Page: page, After: after, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode page: %w", err)})
				return
			}
			if !yield(body.Results, nil) {
				return
			}

			after = body.nextCursor()
			if after == "" {
				return
			}
			if _, dup := seen[after]; dup {
				logger.Warn("Contacts cursor repeated, stopping pagination", zap.String("after", after), zap.Int("page", page))
				return
			}
			seen[after] = struct{}{}
		}
	}
}

// FetchAll collects every page in order. When a page fails, the contacts
// gathered so far are returned together with the *models.PageFetchError.
func (c *Client) FetchAll(ctx context.Context, accessToken string) ([]Contact, error) {
	var contacts []Contact
	for page, err := range c.Pages(ctx, accessToken) {
		if err != nil {
			return contacts, err
		}
		contacts = append(contacts, page...)
	}
	return contacts, nil
}

// ListItems lists the contacts visible to the credentials as integration
// items. When a page fails, the items fetched before it are returned together
// with the *models.PageFetchError.
func (c *Client) ListItems(ctx context.Context, credentials []byte) ([]models.IntegrationItem, error) {
	token, err := accessToken(credentials)
	if err != nil {
		return nil, err
	}

	contacts, err := c.FetchAll(ctx, token)
	items := make([]models.IntegrationItem, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, normalize(contact, ItemTypeContact, c.appBaseURL))
	}
	return items, err
}

// GetItems is ListItems with best effort pagination: a failed page is logged
// and the items fetched before it are returned without an error.
func (c *Client) GetItems(ctx context.Context, credentials []byte) ([]models.IntegrationItem, error) {
	items, err := c.ListItems(ctx, credentials)
	if err != nil {
		var pageErr *models.PageFetchError
		if !errors.As(err, &pageErr) {
			return nil, err
		}
		logger.Warn("Error fetching contacts, returning partial results",
			zap.Int("page", pageErr.Page),
			zap.Int("status", pageErr.StatusCode),
			zap.String("body", pageErr.Body),
			zap.Int("fetched", len(items)),
			zap.Error(pageErr.Err),
		)
	}
	logger.Info("HubSpot contacts fetched", zap.Int("count", len(items)))
	return items, nil
}

func accessToken(credentials []byte) (string, error) {
	var creds struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(credentials, &creds); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrMissingAccessToken, err)
	}
	if strings.TrimSpace(creds.AccessToken) == "" {
		return "", models.ErrMissingAccessToken
	}
	return creds.AccessToken, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
