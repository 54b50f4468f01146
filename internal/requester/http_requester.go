package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout applies when no request timeout is configured
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResponseBytes caps how much of a response body is read
	DefaultMaxResponseBytes int64 = 10 << 20
)

// HTTPRequester builds and executes outbound requests
type HTTPRequester struct {
	client *http.Client
}

type HTTPRequesterParams struct {
	fx.In

	Config *config.HubSpotConfig `optional:"true"`
}

// NewHTTPRequester creates a new HTTPRequester using the configured request timeout
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := DefaultTimeout
	if params.Config != nil && params.Config.RequestTimeout > 0 {
		timeout = params.Config.RequestTimeout
	}
	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// Client exposes the underlying client, e.g. for oauth2.HTTPClient.
func (r *HTTPRequester) Client() *http.Client {
	return r.client
}

// BuildRouteExecutor creates a function that can execute requests for a specific route
func (r *HTTPRequester) BuildRouteExecutor(endpoint *EndpointConfig, route *RouteConfig, authMgr AuthManager) (RouteExecutor, error) {
	if endpoint == nil || endpoint.BaseURL == "" {
		return nil, fmt.Errorf("endpoint base url is required")
	}
	if route == nil {
		return nil, fmt.Errorf("route config is nil")
	}
	builder := NewHTTPRequestBuilder(endpoint, authMgr, route)
	limit := route.MethodConfig.MaxResponseBytes
	if limit <= 0 {
		limit = DefaultMaxResponseBytes
	}

	return func(ctx context.Context, params map[string]any) (*Response, error) {
		req, err := builder.BuildRequest(ctx, params)
		if err != nil {
			return nil, err
		}
		logger.Debug("Request route", zap.String("method", req.Method), zap.String("path", route.Path))

		start := time.Now()
		resp, err := r.execute(req, limit)
		if err != nil {
			logger.Error("Failed to execute request", zap.String("path", route.Path), zap.Error(err))
			return nil, err
		}
		logger.Debug("Route responded",
			zap.String("path", route.Path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
		)
		return resp, nil
	}, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(req *Request, limit int64) (resp *Response, err error) {
	httpResp, err := r.client.Do(req.HttpRequest)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, httpResp.Body)
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(httpResp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(bodyBytes)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       bodyBytes,
		Headers:    httpResp.Header,
	}, nil
}
