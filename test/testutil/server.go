// Package testutil provides an HTTP fixture server and config helpers shared by
// the CLI tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture paths served by NewTestServer.
const (
	PathHello    = "/hello"
	PathMissing  = "/missing"
	PathEmpty    = "/empty"
	PathHeaders  = "/headers"
	PathRedirect = "/redirect"
	PathBroken   = "/broken"
)

// HelloBody is the body served at PathHello.
const HelloBody = "hello"

// NewTestServer starts a server exposing the fixture paths and closes it when
// the test ends:
//   - PathHello: 200 with HelloBody
//   - PathMissing: 404 with a small error body
//   - PathEmpty: 200 with no body
//   - PathHeaders: 200 with the request headers as a JSON object
//   - PathRedirect: 302 to PathHello
//   - PathBroken: promises more bytes than it sends
func NewTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(PathHello, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, HelloBody)
	})
	mux.HandleFunc(PathMissing, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})
	mux.HandleFunc(PathEmpty, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(PathHeaders, func(w http.ResponseWriter, r *http.Request) {
		flat := make(map[string]string, len(r.Header))
		for name, values := range r.Header {
			flat[name] = strings.Join(values, ",")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(flat)
	})
	mux.HandleFunc(PathRedirect, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, PathHello, http.StatusFound)
	})
	mux.HandleFunc(PathBroken, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = io.WriteString(w, "short")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// SetupTestConfig writes content as config.yaml into a fresh temporary
// directory and returns its path.
func SetupTestConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

// DecodeHeaders parses a PathHeaders response body.
func DecodeHeaders(t *testing.T, body []byte) map[string]string {
	t.Helper()

	var headers map[string]string
	if err := json.Unmarshal(body, &headers); err != nil {
		t.Fatalf("Failed to decode echoed headers %q: %v", body, err)
	}
	return headers
}
