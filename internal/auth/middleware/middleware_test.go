package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestCORSWithOrigins(t *testing.T) {
	tests := []struct {
		name      string
		origins   []string
		origin    string
		wantAllow string
		wantCreds string
	}{
		{name: "No Origins Allows All", origins: nil, origin: "http://a.test", wantAllow: "*"},
		{name: "Wildcard", origins: []string{"*"}, origin: "http://a.test", wantAllow: "*"},
		{name: "Listed Origin", origins: []string{"http://localhost:3000"}, origin: "http://localhost:3000", wantAllow: "http://localhost:3000", wantCreds: "true"},
		{name: "Unlisted Origin", origins: []string{"http://localhost:3000"}, origin: "http://evil.test", wantAllow: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORSWithOrigins(tt.origins)(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusTeapot, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSWithOrigins_Preflight(t *testing.T) {
	rec := httptest.NewRecorder()
	CORSWithOrigins(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRequestLogger_AssignsID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestLogger_KeepsValidIncomingID(t *testing.T) {
	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, incoming)

	rec := httptest.NewRecorder()
	RequestLogger(okHandler).ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRequestLogger_ReplacesGarbageID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\nforged")

	rec := httptest.NewRecorder()
	RequestLogger(okHandler).ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid\nforged", rec.Header().Get(RequestIDHeader))
}
