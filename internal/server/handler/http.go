// Package handler assembles the HTTP routes of the service.
package handler

import (
	"net/http"

	"github.com/brizzai/hubspot-connect/internal/auth"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/utils"
)

// MCPPath is where the streamable MCP endpoint is mounted
const MCPPath = "/mcp"

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	auth *auth.Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(auth *auth.Service) *Handler {
	return &Handler{
		auth: auth,
	}
}

// CreateHTTPHandler mounts the integration routes, the health check and the
// MCP endpoint (when mcpHandler is not nil) behind request logging and CORS.
func (h *Handler) CreateHTTPHandler(mcpHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)

	h.auth.RegisterRoutes(mux)
	logger.Info("Registered integration routes")

	if mcpHandler != nil {
		mux.Handle(MCPPath, mcpHandler)
		logger.Info("Registered MCP endpoint")
	}

	return h.auth.WrapWithMiddleware(mux)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, map[string]string{"status": "ok"})
}
