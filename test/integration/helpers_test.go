//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"insight-server/internal/config"
	"insight-server/internal/handler"
	"insight-server/internal/metabase"
	"insight-server/internal/middleware"
	"insight-server/internal/model"
	"insight-server/internal/repository"
	"insight-server/internal/router"
	"insight-server/internal/service"
)

// fakeSchemaStore replaces the Postgres catalog introspection in tests.
type fakeSchemaStore struct{}

func (fakeSchemaStore) Tables(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`[{"schema":"public","table":"users","columns":[],"primary_key":["id"],"foreign_keys":[]}]`), nil
}

// newTestServer wires the full HTTP stack against an in-memory user store.
func newTestServer(t *testing.T) (*httptest.Server, *repository.MemoryUserStore) {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout: 30 * time.Second,
		CORSOrigins:    []string{"*"},
		UploadRoot:     t.TempDir(),
		ThumbnailRoot:  t.TempDir(),
		MaxUploadSize:  5 << 20,
		SchemaName:     "public",
	}

	store := repository.NewMemoryUserStore()

	tokens := service.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), 30*time.Minute, time.Hour)
	auth := service.NewAuthService(store, tokens)
	accounts := service.NewAccountService(store)

	uploads, err := service.NewUploadService(store, cfg.UploadRoot, cfg.ThumbnailRoot)
	require.NoError(t, err)

	visualizations := service.NewVisualizationService("", metabase.NewClient("", "", "", 0))

	registry := prometheus.NewRegistry()
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(auth, accounts),
		User:          handler.NewUserHandler(accounts),
		Upload:        handler.NewUploadHandler(uploads, cfg.MaxUploadSize),
		Email:         handler.NewEmailHandler(service.NewEmailService()),
		Schema:        handler.NewSchemaHandler(fakeSchemaStore{}, cfg.SchemaName),
		Visualization: handler.NewVisualizationHandler(visualizations),
		Metrics:       handler.NewMetricsHandler(service.NewMetricsService(store)),
	}

	mux := router.New(cfg, registry, middleware.NewMetrics(registry), middleware.NewAuthMiddleware(tokens, store), handlers)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func registerUser(t *testing.T, server *httptest.Server, name string, email string, password string, role string) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/users/register", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// login authenticates and returns the access token.
func login(t *testing.T, server *httptest.Server, email string, password string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"username": email, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/users/authenticate", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data model.TokenPair `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Data.AccessToken)
	require.NotEmpty(t, parsed.Data.RefreshToken)
	return parsed.Data.AccessToken
}

func doRequest(t *testing.T, method string, url string, token string, body []byte) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeData[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var parsed struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed.Data
}
