package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// TestServer is a wrapper around httptest.Server serving source manifests
type TestServer struct {
	*httptest.Server
	mux  *http.ServeMux
	hits atomic.Int64
}

// NewTestServer creates a new test HTTP server closed at test cleanup
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	ts := &TestServer{mux: http.NewServeMux()}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		ts.mux.ServeHTTP(w, r)
	}))

	t.Cleanup(ts.Server.Close)
	return ts
}

// Handle registers a handler for a specific path
func (ts *TestServer) Handle(path string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(path, handler)
}

// HandleString registers a handler that returns body with the given content type
func (ts *TestServer) HandleString(path, contentType, body string) {
	ts.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

// HandleManifest registers a handler that returns a JSON manifest body
func (ts *TestServer) HandleManifest(path, body string) {
	ts.HandleString(path, "application/json", body)
}

// HandleStatus registers a handler that answers with status and a short body
func (ts *TestServer) HandleStatus(path string, status int) {
	ts.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
	})
}

// URLFor returns the absolute URL for path
func (ts *TestServer) URLFor(path string) string {
	return ts.Server.URL + path
}

// Hits returns the number of requests served so far
func (ts *TestServer) Hits() int64 {
	return ts.hits.Load()
}
