package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavyaresto/kavyaserve/internal/logging"
	"github.com/kavyaresto/kavyaserve/internal/server/auth"
)

func get(t *testing.T, srv *HTTPServer, path string, header ...string) (int, string, http.Header) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b), resp.Header
}

func TestRoot_NoFrontend(t *testing.T) {
	srv := newTestServer(t, &fakeAuthService{})

	code, body, _ := get(t, srv, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Backend is running!", body)
}

func TestFrontend_StaticAndFallback(t *testing.T) {
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>spa</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := testConfig()
	cfg.FrontendDist = dist
	srv := NewHTTPServer(cfg, &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), logging.Nop())

	code, body, _ := get(t, srv, "/app.js")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "console.log(1)", body)

	code, body, _ = get(t, srv, "/menu/42")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "spa")

	code, _, _ = get(t, srv, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFrontend_MissingDirFallsBackToBanner(t *testing.T) {
	cfg := testConfig()
	cfg.FrontendDist = filepath.Join(t.TempDir(), "does-not-exist")
	srv := NewHTTPServer(cfg, &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), logging.Nop())

	_, body, _ := get(t, srv, "/")
	assert.Equal(t, "Backend is running!", body)
}

func TestCORS(t *testing.T) {
	t.Run("listed origin", func(t *testing.T) {
		cfg := testConfig()
		cfg.CORSOrigin = "http://a.test, http://b.test"
		srv := NewHTTPServer(cfg, &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), logging.Nop())

		_, _, h := get(t, srv, "/", "Origin", "http://b.test")
		assert.Equal(t, "http://b.test", h.Get("Access-Control-Allow-Origin"))

		_, _, h = get(t, srv, "/", "Origin", "http://evil.test")
		assert.Empty(t, h.Get("Access-Control-Allow-Origin"))
		assert.Empty(t, h.Get("Access-Control-Allow-Credentials"))
	})

	t.Run("odd values do not break startup", func(t *testing.T) {
		tests := []struct {
			origin  string
			allowed string
		}{
			{origin: " , "},
			{origin: "*,http://a.test", allowed: "http://a.test"},
			{origin: "localhost:5173"},
			{origin: "HTTP://Upper.Test", allowed: "http://upper.test"},
		}

		for _, tt := range tests {
			cfg := testConfig()
			cfg.CORSOrigin = tt.origin

			var srv *HTTPServer
			require.NotPanics(t, func() {
				srv = NewHTTPServer(cfg, &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), logging.Nop())
			}, tt.origin)

			_, _, h := get(t, srv, "/", "Origin", "http://evil.test")
			assert.Empty(t, h.Get("Access-Control-Allow-Origin"), tt.origin)

			if tt.allowed != "" {
				_, _, h = get(t, srv, "/", "Origin", tt.allowed)
				assert.Equal(t, tt.allowed, h.Get("Access-Control-Allow-Origin"), tt.origin)
			}
		}
	})

	t.Run("wildcard", func(t *testing.T) {
		cfg := testConfig()
		cfg.CORSOrigin = "*"
		srv := NewHTTPServer(cfg, &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), logging.Nop())

		_, _, h := get(t, srv, "/", "Origin", "http://anything.test")
		assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	})
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "127.0.0.1:0"
	srv := NewHTTPServer(cfg, &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

type recordedLine struct {
	msg  string
	args []any
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []recordedLine
}

func (r *recordingLogger) record(msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, recordedLine{msg: msg, args: args})
}

func (r *recordingLogger) Debug(_ context.Context, msg string, args ...any) { r.record(msg, args) }
func (r *recordingLogger) Info(_ context.Context, msg string, args ...any)  { r.record(msg, args) }
func (r *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { r.record(msg, args) }
func (r *recordingLogger) Error(_ context.Context, msg string, args ...any) { r.record(msg, args) }
func (r *recordingLogger) With(...any) logging.Logger                       { return r }

func (r *recordingLogger) find(msg string) (map[string]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.msg != msg {
			continue
		}
		kv := map[string]any{}
		for i := 0; i+1 < len(l.args); i += 2 {
			if k, ok := l.args[i].(string); ok {
				kv[k] = l.args[i+1]
			}
		}
		return kv, true
	}
	return nil, false
}

func TestAccessLog_GoesThroughLogger(t *testing.T) {
	rec := &recordingLogger{}
	srv := NewHTTPServer(testConfig(), &fakeAuthService{}, auth.NewSessionVerifier("s", time.Hour), rec)

	code, _, _ := get(t, srv, "/api/auth/profile")
	require.Equal(t, http.StatusUnauthorized, code)

	kv, ok := rec.find("http request")
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, kv["method"])
	assert.Equal(t, "/api/auth/profile", kv["path"])
	assert.Equal(t, http.StatusUnauthorized, kv["status"])
}
