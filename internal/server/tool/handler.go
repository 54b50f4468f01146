// Package tool exposes integration items as MCP tools.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

const (
	// ListContactsName is the MCP tool listing HubSpot contacts
	ListContactsName = "hubspot_list_contacts"

	argCredentials = "credentials"
	argAccessToken = "access_token"
)

// ItemLister turns credentials into integration items
type ItemLister interface {
	GetItems(ctx context.Context, credentials []byte) ([]models.IntegrationItem, error)
}

// Handler manages tool execution.
type Handler struct {
	items ItemLister
}

// NewHandler creates a new tool handler.
func NewHandler(items ItemLister) *Handler {
	return &Handler{items: items}
}

// ListContactsTool describes the contacts listing tool
func (h *Handler) ListContactsTool() mcp.Tool {
	return mcp.NewTool(ListContactsName,
		mcp.WithDescription("List every HubSpot contact visible to the given OAuth credentials as integration items (id, name, type, creation_time, last_modified_time, url)."),
		mcp.WithString(argCredentials,
			mcp.Description("Token response JSON returned by the credentials endpoint, must contain access_token"),
		),
		mcp.WithString(argAccessToken,
			mcp.Description("HubSpot access token, used when credentials is not given"),
		),
	)
}

// HandleListContacts runs the contacts listing. Caller mistakes are returned
// as tool errors so the model can correct them.
func (h *Handler) HandleListContacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	creds, err := credentialsArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := h.items.GetItems(ctx, creds)
	if err != nil {
		if models.IsClientError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		logger.Error("Tool call failed", zap.String("tool", ListContactsName), zap.Error(err))
		return nil, fmt.Errorf("failed to execute tool %s: %w", ListContactsName, err)
	}
	if items == nil {
		items = []models.IntegrationItem{}
	}

	out, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func credentialsArg(args map[string]any) ([]byte, error) {
	if raw, ok := args[argCredentials].(string); ok && raw != "" {
		return []byte(raw), nil
	}
	if token, ok := args[argAccessToken].(string); ok && token != "" {
		return json.Marshal(map[string]string{argAccessToken: token})
	}
	return nil, fmt.Errorf("one of %s or %s is required", argCredentials, argAccessToken)
}
