package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/webhooker/internal/security"
	"github.com/Tyrowin/webhooker/internal/store"
)

const (
	bootstrapPassword = "ragamuffin"
	testTokenSecret   = "test-token-secret"
)

func testConfig() *Config {
	cfg := NewConfig()
	cfg.HashMemoryKiB = 1024
	cfg.HashThreads = 1
	cfg.BootstrapPassword = bootstrapPassword
	cfg.TokenSecret = testTokenSecret
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	cfg    *Config
	store  *store.Memory
	server *Server
	http   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	st := store.NewMemory()
	srv, err := newWithStore(context.Background(), cfg, discardLogger(), st)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Hub().Shutdown(cfg.ShutdownTimeout)
		ts.Close()
	})
	return &testEnv{cfg: cfg, store: st, server: srv, http: ts}
}

// addUser creates an identity with password and returns it.
func (e *testEnv) addUser(t *testing.T, name, password string, disabled bool) *store.Identity {
	t.Helper()
	hasher, err := security.NewHasher(e.cfg.Salt, e.cfg.HashParams())
	require.NoError(t, err)
	identity := &store.Identity{Name: name, Disabled: disabled, PasswordHash: hasher.Derive(password)}
	require.NoError(t, e.store.CreateIdentity(context.Background(), identity))
	return identity
}

// login obtains a bearer token for name and password.
func (e *testEnv) login(t *testing.T, name, password string) string {
	t.Helper()
	resp := e.postForm(t, "/token", url.Values{"username": {name}, "password": {password}})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.PostForm(e.http.URL+path, form)
	require.NoError(t, err)
	return resp
}

// do sends a request with an optional bearer token and JSON body.
func (e *testEnv) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.http.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decode reads the JSON body of resp into target and closes it.
func decode(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600)
}
