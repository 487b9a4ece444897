package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timemory/doxsite/internal/history"
)

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHealthz(t *testing.T) {
	srv := New(Options{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeDocsTree(t *testing.T) {
	docs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docs, "index.html"), []byte("<html>docs</html>"), 0o600))

	srv := New(Options{DocsRoot: docs})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docs")
}

func TestBuildsEndpoint(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Record(context.Background(), history.Build{
		ID:        "b-1",
		StartedAt: time.Now(),
		Outcome:   "success",
		Trigger:   "manual",
	}))

	srv := New(Options{History: store})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/builds", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var builds []history.Build
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &builds))
	require.Len(t, builds, 1)
	assert.Equal(t, "b-1", builds[0].ID)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/builds/b-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var b history.Build
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, "success", b.Outcome)
}

func TestBuildsEndpoint_NotFound(t *testing.T) {
	store := newTestStore(t)
	srv := New(Options{History: store})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/builds/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildsEndpoint_HistoryDisabled(t *testing.T) {
	srv := New(Options{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/builds", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBuildsEndpoint_BadLimit(t *testing.T) {
	store := newTestStore(t)
	srv := New(Options{History: store})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/builds?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv := New(Options{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
