package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
)

func TestServer_Run(t *testing.T) {
	t.Parallel()

	t.Run("serves until context is cancelled then runs hooks", func(t *testing.T) {
		t.Parallel()
		var hookCalls atomic.Int32
		srv := httpserver.New(
			httpserver.WithAddr("127.0.0.1:0"),
			httpserver.WithShutdownHook(func(context.Context) error {
				hookCalls.Add(1)
				return nil
			}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))
		}()

		require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 5*time.Millisecond)

		resp, err := http.Get("http://" + srv.Addr().String())
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)

		cancel()
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), hookCalls.Load())

		assert.NoError(t, srv.Shutdown(context.Background()))
		assert.Equal(t, int32(1), hookCalls.Load())
	})

	t.Run("hook failure is reported", func(t *testing.T) {
		t.Parallel()
		hookErr := errors.New("disconnect failed")
		srv := httpserver.New(
			httpserver.WithAddr("127.0.0.1:0"),
			httpserver.WithShutdownHook(func(context.Context) error { return hookErr }),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx, nil) }()
		require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 5*time.Millisecond)

		cancel()
		err := <-done
		assert.ErrorIs(t, err, httpserver.ErrShutdown)
		assert.ErrorIs(t, err, hookErr)
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()
		srv := httpserver.New(httpserver.WithAddr("256.0.0.1:bad"))
		err := srv.Run(context.Background(), nil)
		assert.ErrorIs(t, err, httpserver.ErrStart)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, httpserver.NewFromConfig(httpserver.Config{}))
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownHook(nil) })
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
		t.Helper()
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		httpserver.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alive", decode(t, w)["status"])
	})

	t.Run("readiness", func(t *testing.T) {
		t.Parallel()
		ok := httpserver.Check{Name: "mongo", Fn: func(context.Context) error { return nil }}
		down := httpserver.Check{Name: "redis", Fn: func(context.Context) error { return errors.New("refused") }}

		w := httptest.NewRecorder()
		httpserver.ReadinessHandler(nil, time.Second, ok)(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", decode(t, w)["status"])

		w = httptest.NewRecorder()
		httpserver.ReadinessHandler(nil, time.Second, ok, down)(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decode(t, w)
		assert.Equal(t, "not_ready", body["status"])
		assert.Equal(t, map[string]any{"mongo": "ok", "redis": "fail"}, body["checks"])
	})
}
