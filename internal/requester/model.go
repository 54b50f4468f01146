package requester

import (
	"context"
	"io"
	"net/http"
)

// RouteExecutor is a function that can execute a route with params
type RouteExecutor func(ctx context.Context, params map[string]any) (*Response, error)

// Request represents a fully built HTTP request
type Request struct {
	URL         string
	Method      string
	Body        io.Reader
	Headers     map[string]string
	ContentType string
	HttpRequest *http.Request
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
