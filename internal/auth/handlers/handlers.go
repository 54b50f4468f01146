package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/brizzai/hubspot-connect/internal/auth/constants"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/models"
	"github.com/brizzai/hubspot-connect/internal/utils"
	"go.uber.org/zap"
)

// Handshake is the OAuth flow behind the integration routes
type Handshake interface {
	Authorize(ctx context.Context, userID, orgID string) (string, error)
	HandleCallback(ctx context.Context, query url.Values) (string, error)
	Credentials(ctx context.Context, userID, orgID string) (json.RawMessage, error)
}

// ItemLoader turns cached credentials into integration items
type ItemLoader interface {
	GetItems(ctx context.Context, credentials []byte) ([]models.IntegrationItem, error)
}

// Handler handles integration HTTP requests
type Handler struct {
	handshake Handshake
	loader    ItemLoader
}

// NewHandler creates a new Handler instance
func NewHandler(handshake Handshake, loader ItemLoader) *Handler {
	return &Handler{
		handshake: handshake,
		loader:    loader,
	}
}

// HandleAuthorize returns the provider authorization URL as a JSON string
func (h *Handler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, "invalid_request", "Failed to parse form", http.StatusBadRequest)
		return
	}

	authURL, err := h.handshake.Authorize(r.Context(), r.PostForm.Get(constants.ParamUserID), r.PostForm.Get(constants.ParamOrgID))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	utils.WriteJSON(w, authURL)
}

// HandleCallback handles the provider redirect
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, err := h.handshake.HandleCallback(r.Context(), r.URL.Query())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	utils.WriteHTML(w, page)
}

// HandleCredentials hands out the cached credentials once
func (h *Handler) HandleCredentials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, "invalid_request", "Failed to parse form", http.StatusBadRequest)
		return
	}

	creds, err := h.handshake.Credentials(r.Context(), r.PostForm.Get(constants.ParamUserID), r.PostForm.Get(constants.ParamOrgID))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	utils.WriteRawJSON(w, creds)
}

// HandleLoad lists contacts with the credentials posted by the frontend
func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.loader == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, "invalid_request", "Failed to parse form", http.StatusBadRequest)
		return
	}

	items, err := h.loader.GetItems(r.Context(), []byte(r.PostForm.Get(constants.ParamCredentials)))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if items == nil {
		items = []models.IntegrationItem{}
	}
	utils.WriteJSON(w, items)
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if models.IsClientError(err) {
		logger.Debug("Rejected request", zap.String("path", r.URL.Path), zap.Error(err))
		utils.WriteError(w, models.ErrorCode(err), err.Error(), http.StatusBadRequest)
		return
	}
	logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	utils.WriteError(w, "server_error", "Internal server error", http.StatusInternalServerError)
}
