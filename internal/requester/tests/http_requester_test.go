package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRequester(t *testing.T) {
	tests := []struct {
		name           string
		routeConfig    *requester.RouteConfig
		headers        map[string]string
		params         map[string]any
		timeout        time.Duration
		serverResponse func(w http.ResponseWriter, r *http.Request)
		checkResponse  func(t *testing.T, response *requester.Response, err error)
	}{
		{
			name: "Simple GET Request",
			routeConfig: &requester.RouteConfig{
				Path:   "/test",
				Method: "GET",
			},
			timeout: 30 * time.Second,
			params: map[string]any{
				"param1": "value1",
				"param2": "value2",
			},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "GET", r.Method)
				assert.Equal(t, "/test", r.URL.Path)
				assert.Equal(t, "value1", r.URL.Query().Get("param1"))
				assert.Equal(t, "value2", r.URL.Query().Get("param2"))
				w.WriteHeader(http.StatusOK)
				if err := json.NewEncoder(w).Encode(map[string]string{"status": "success"}); err != nil {
					t.Errorf("Failed to encode response: %v", err)
				}
			},
			checkResponse: func(t *testing.T, response *requester.Response, err error) {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, response.StatusCode)
				assert.True(t, response.IsSuccess())

				var body map[string]string
				err = json.Unmarshal(response.Body, &body)
				require.NoError(t, err)
				assert.Equal(t, "success", body["status"])
			},
		},
		{
			name: "POST Form Request",
			routeConfig: &requester.RouteConfig{
				Path:         "/token",
				Method:       "POST",
				MethodConfig: requester.MethodConfig{BodyEncoding: requester.BodyForm},
			},
			timeout: 30 * time.Second,
			params: map[string]any{
				"code": "abc",
			},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "abc", r.PostForm.Get("code"))
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"status":"created"}`))
			},
			checkResponse: func(t *testing.T, response *requester.Response, err error) {
				require.NoError(t, err)
				assert.Equal(t, http.StatusCreated, response.StatusCode)
				assert.JSONEq(t, `{"status":"created"}`, string(response.Body))
			},
		},
		{
			name: "Non 2xx Is Returned As Response",
			routeConfig: &requester.RouteConfig{
				Path:   "/fail",
				Method: "GET",
			},
			timeout: 30 * time.Second,
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
			},
			checkResponse: func(t *testing.T, response *requester.Response, err error) {
				require.NoError(t, err)
				assert.False(t, response.IsSuccess())
				assert.Equal(t, "boom", string(response.Body))
			},
		},
		{
			name: "Request Timeout",
			routeConfig: &requester.RouteConfig{
				Path:   "/timeout",
				Method: "GET",
			},
			timeout: 100 * time.Millisecond,
			params:  map[string]any{},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			checkResponse: func(t *testing.T, response *requester.Response, err error) {
				assert.Error(t, err)
				assert.Nil(t, response)
			},
		},
		{
			name: "Response Too Large",
			routeConfig: &requester.RouteConfig{
				Path:         "/large",
				Method:       "GET",
				MethodConfig: requester.MethodConfig{MaxResponseBytes: 8},
			},
			timeout: 30 * time.Second,
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(strings.Repeat("x", 64)))
			},
			checkResponse: func(t *testing.T, response *requester.Response, err error) {
				assert.ErrorContains(t, err, "exceeds")
				assert.Nil(t, response)
			},
		},
		{
			name: "Request with Headers",
			routeConfig: &requester.RouteConfig{
				Path:   "/headers",
				Method: "GET",
			},
			headers: map[string]string{"X-Test-Header": "test-value"},
			timeout: 30 * time.Second,
			params:  map[string]any{},
			serverResponse: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "test-value", r.Header.Get("X-Test-Header"))
				w.WriteHeader(http.StatusOK)
			},
			checkResponse: func(t *testing.T, response *requester.Response, err error) {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, response.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResponse))
			defer server.Close()

			endpoint := &requester.EndpointConfig{BaseURL: server.URL, Headers: tt.headers}

			r := requester.NewHTTPRequester(requester.HTTPRequesterParams{})
			r.SetTimeout(tt.timeout)

			executor, err := r.BuildRouteExecutor(endpoint, tt.routeConfig, requester.NoAuth())
			require.NoError(t, err)

			resp, err := executor(context.Background(), tt.params)
			tt.checkResponse(t, resp, err)
		})
	}
}

func TestNewHTTPRequester_UsesConfiguredTimeout(t *testing.T) {
	r := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		Config: &config.HubSpotConfig{RequestTimeout: 5 * time.Second},
	})
	assert.Equal(t, 5*time.Second, r.Client().Timeout)

	r = requester.NewHTTPRequester(requester.HTTPRequesterParams{})
	assert.Equal(t, requester.DefaultTimeout, r.Client().Timeout)
}

func TestBuildRouteExecutor_RequiresBaseURL(t *testing.T) {
	r := requester.NewHTTPRequester(requester.HTTPRequesterParams{})
	_, err := r.BuildRouteExecutor(&requester.EndpointConfig{}, &requester.RouteConfig{Path: "/x"}, nil)
	assert.Error(t, err)
}
