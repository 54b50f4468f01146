package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPRequestBuilder turns params into an *http.Request for one route
type HTTPRequestBuilder struct {
	endpoint    *EndpointConfig
	authMgr     AuthManager
	routeConfig *RouteConfig
}

// NewHTTPRequestBuilder creates a new HTTPRequestBuilder
func NewHTTPRequestBuilder(endpoint *EndpointConfig, authMgr AuthManager, route *RouteConfig) *HTTPRequestBuilder {
	if authMgr == nil {
		authMgr = NoAuth()
	}
	return &HTTPRequestBuilder{
		endpoint:    endpoint,
		authMgr:     authMgr,
		routeConfig: route,
	}
}

// BuildRequest builds a request from the route and parameters.
// Path placeholders like {id} are filled from params and are not sent again.
func (b *HTTPRequestBuilder) BuildRequest(ctx context.Context, params map[string]any) (*Request, error) {
	if b.routeConfig == nil {
		return nil, fmt.Errorf("route config is nil")
	}
	if b.endpoint == nil {
		return nil, fmt.Errorf("endpoint config is nil")
	}
	method := strings.ToUpper(b.routeConfig.Method)
	if method == "" {
		method = http.MethodGet
	}

	rawURL, rest := b.buildURL(b.routeConfig.Path, params)

	if method == http.MethodGet || method == http.MethodDelete {
		var err error
		rawURL, err = addQueryParams(rawURL, rest)
		if err != nil {
			return nil, err
		}
	}

	body, contentType, err := b.createRequestBody(method, rest)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	// Merge headers
	headers := make(map[string]string)
	for k, v := range b.endpoint.Headers {
		headers[k] = v
	}
	for k, v := range b.routeConfig.Headers {
		headers[k] = v
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	if err := b.authMgr.ApplyAuth(httpReq); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	return &Request{
		URL:         rawURL,
		Method:      method,
		Body:        body,
		Headers:     headers,
		ContentType: contentType,
		HttpRequest: httpReq,
	}, nil
}

func (b *HTTPRequestBuilder) buildURL(path string, params map[string]any) (string, map[string]any) {
	u := strings.TrimRight(b.endpoint.BaseURL, "/") + path

	rest := make(map[string]any, len(params))
	for key, value := range params {
		placeholder := "{" + key + "}"
		if strings.Contains(u, placeholder) {
			u = strings.ReplaceAll(u, placeholder, url.PathEscape(fmt.Sprintf("%v", value)))
			continue
		}
		rest[key] = value
	}
	return u, rest
}

func addQueryParams(baseURL string, params map[string]any) (string, error) {
	if len(params) == 0 {
		return baseURL, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", baseURL, err)
	}

	q := u.Query()
	for key, value := range params {
		// Skip body parameter
		if key == "body" {
			continue
		}
		setValue(q, key, value)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (b *HTTPRequestBuilder) createRequestBody(method string, params map[string]any) (io.Reader, string, error) {
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		return nil, "", nil

	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if b.routeConfig.MethodConfig.BodyEncoding == BodyForm {
			form := url.Values{}
			for key, value := range params {
				setValue(form, key, value)
			}
			return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
		}

		if body, ok := params["body"]; ok {
			jsonData, err := json.Marshal(body)
			if err != nil {
				return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
			}
			return bytes.NewBuffer(jsonData), "application/json", nil
		}
		return nil, "", nil

	default:
		return nil, "", fmt.Errorf("unsupported method: %s", method)
	}
}

// setValue writes scalars once and slices as repeated keys. Empty strings are skipped.
func setValue(v url.Values, key string, value any) {
	switch val := value.(type) {
	case nil:
	case []string:
		for _, s := range val {
			v.Add(key, s)
		}
	case string:
		if val != "" {
			v.Set(key, val)
		}
	default:
		v.Set(key, fmt.Sprintf("%v", val))
	}
}
