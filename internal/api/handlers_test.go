package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_media/internal/creds"
)

const testKey = "secret-key"

func newTestServer(t *testing.T, credentials *creds.Manager) http.Handler {
	t.Helper()
	return NewServeMux(NewHandler(testKey, credentials))
}

func doRequest(h http.Handler, method, target string, body string, header map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestAuth(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{"missing key", "/media?query=x", nil, http.StatusUnauthorized},
		{"wrong header key", "/media?query=x", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"wrong bearer", "/media?query=x", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"header key", "/media", map[string]string{"X-API-Key": testKey}, http.StatusBadRequest},
		{"query key", "/media?apikey=" + testKey, nil, http.StatusBadRequest},
		{"bearer key", "/media", map[string]string{"Authorization": "Bearer " + testKey}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodGet, tt.target, "", tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthNoKeyConfigured(t *testing.T) {
	h := NewServeMux(NewHandler("", nil))
	w := doRequest(h, http.MethodGet, "/media?query=x", "", map[string]string{"X-API-Key": ""})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidationErrors(t *testing.T) {
	h := newTestServer(t, nil)
	auth := map[string]string{"X-API-Key": testKey}

	tests := []struct {
		target string
		want   string
	}{
		{"/media", `"query" must be provided!`},
		{"/allsides", `"name" must be provided!`},
		{"/mediabiasfactcheck", `"name" must be provided!`},
		{"/youtube", `Either one of "query" or "channels" must be provided!`},
		{"/youtube?query=war&max_channels=0", `"max_channels" must be provided when no "channels" are set!`},
		{"/youtube-transcripts", `"ids" must be provided!`},
		{"/x", `Either one of "query" or "users" must be provided!`},
		{"/x?query=war&max_users=0", `"max_users" must be provided when no "users" are set!`},
		{"/substack", `"publications" must be provided!`},
		{"/news", `Either one of "query", "channels" or "users" must be provided!`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := doRequest(h, http.MethodGet, tt.target, "", auth)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorMessage(t, w))
		})
	}
}

func TestOpenEndpoints(t *testing.T) {
	h := newTestServer(t, nil)

	w := doRequest(h, http.MethodGet, "/privacy", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "You are ok", w.Body.String())

	w = doRequest(h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doRequest(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cache_hits")
}

func TestCookieWebhook(t *testing.T) {
	auth := map[string]string{"X-API-Key": testKey}

	t.Run("stores valid payload", func(t *testing.T) {
		store := creds.NewMemStore()
		mgr := creds.NewManager(store, nil)
		h := newTestServer(t, mgr)

		w := doRequest(h, http.MethodPost, "/webhook/cookies",
			`{"success":true,"cookies":"auth_token=abc; ct0=def"}`, auth)
		require.Equal(t, http.StatusOK, w.Code)

		got, err := mgr.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "auth_token=abc; ct0=def", got)
	})

	t.Run("rejects reported failure", func(t *testing.T) {
		mgr := creds.NewManager(creds.NewMemStore(), nil)
		h := newTestServer(t, mgr)

		w := doRequest(h, http.MethodPost, "/webhook/cookies", `{"success":false,"cookies":null}`, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects success without cookies", func(t *testing.T) {
		mgr := creds.NewManager(creds.NewMemStore(), nil)
		h := newTestServer(t, mgr)

		w := doRequest(h, http.MethodPost, "/webhook/cookies", `{"success":true}`, auth)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `"cookies" must be set when success is true`, errorMessage(t, w))
	})

	t.Run("rejects bad JSON", func(t *testing.T) {
		mgr := creds.NewManager(creds.NewMemStore(), nil)
		h := newTestServer(t, mgr)

		w := doRequest(h, http.MethodPost, "/webhook/cookies", `{nope`, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unavailable without credential storage", func(t *testing.T) {
		h := newTestServer(t, nil)

		w := doRequest(h, http.MethodPost, "/webhook/cookies", `{"success":true,"cookies":"x"}`, auth)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("requires API key", func(t *testing.T) {
		mgr := creds.NewManager(creds.NewMemStore(), nil)
		h := newTestServer(t, mgr)

		w := doRequest(h, http.MethodPost, "/webhook/cookies", `{"success":true,"cookies":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
