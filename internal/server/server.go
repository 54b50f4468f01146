// Package server runs the HubSpot integration over HTTP, or its MCP tools over stdio.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/brizzai/hubspot-connect/internal/auth"
	"github.com/brizzai/hubspot-connect/internal/auth/handlers"
	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/integrations/hubspot"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"github.com/brizzai/hubspot-connect/internal/server/handler"
	"github.com/brizzai/hubspot-connect/internal/server/tool"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server serves the integration routes and the MCP tools.
type Server struct {
	config  *config.Config
	mcp     *mcpserver.MCPServer
	handler *handler.Handler
	tool    *tool.Handler
}

// NewServer creates a server exposing the auth routes and the contacts tool.
func NewServer(cfg *config.Config, authService *auth.Service, items tool.ItemLister) *Server {
	if cfg == nil {
		logger.Fatal("Config cannot be nil")
	}
	if authService == nil {
		logger.Fatal("Auth service cannot be nil")
	}

	mcpServer := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	srv := &Server{
		config:  cfg,
		mcp:     mcpServer,
		handler: handler.NewHandler(authService),
		tool:    tool.NewHandler(items),
	}
	srv.mcp.AddTool(srv.tool.ListContactsTool(), srv.tool.HandleListContacts)

	return srv
}

// HTTPHandler returns the full route tree, including the streamable MCP endpoint.
func (s *Server) HTTPHandler() http.Handler {
	return s.handler.CreateHTTPHandler(mcpserver.NewStreamableHTTPServer(s.mcp))
}

func (s *Server) ServeHTTP(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.config.Server.Timeout > 0 {
		server.ReadTimeout = s.config.Server.Timeout
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

func (s *Server) ServeSTDIO(ctx context.Context) error {
	logger.Info("Starting STDIO server")
	stdioServer := mcpserver.NewStdioServer(s.mcp)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// Start starts the server in the configured mode and blocks until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting server",
		zap.String("mode", string(s.config.Server.Mode)),
		zap.String("version", s.config.Server.Version),
	)

	switch s.config.Server.Mode {
	case config.ServerModeHTTP, "":
		return s.ServeHTTP(ctx)
	case config.ServerModeSTDIO:
		return s.ServeSTDIO(ctx)
	default:
		return fmt.Errorf("unsupported server mode: %s", s.config.Server.Mode)
	}
}

// Run starts the server with the fx lifecycle and stops it on shutdown.
func Run(lc fx.Lifecycle, srv *Server, shutdowner fx.Shutdowner) {
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				defer close(done)
				if err := srv.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// Module provides the server and binds the contacts client to the routes and tools.
var Module = fx.Module("server",
	fx.Provide(
		func(c *hubspot.Client) handlers.ItemLoader { return c },
		func(c *hubspot.Client) tool.ItemLister { return c },
		NewServer,
	),
	fx.Invoke(Run),
)
