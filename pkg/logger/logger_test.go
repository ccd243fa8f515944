package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("creates JSON logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("svc", "test")))
		log.Info("msg")
		assert.Equal(t, "test", decode(t, buf)["svc"])
	})

	t.Run("context value", func(t *testing.T) {
		buf := &bytes.Buffer{}
		type key struct{}
		log := logger.New(logger.WithOutput(buf), logger.WithContextValue("request_id", key{}))

		log.InfoContext(context.WithValue(context.Background(), key{}, "req-1"), "with ctx")
		assert.Equal(t, "req-1", decode(t, buf)["request_id"])
	})

	t.Run("context extractor skipped when absent", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
				return slog.Attr{}, false
			}),
		)
		log.InfoContext(context.Background(), "plain")
		entry := decode(t, buf)
		assert.Equal(t, "plain", entry["msg"])
		assert.Len(t, entry, 3)
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.New(logger.WithFormat(logger.Format("xml")))
		})
	})
}

func TestWithEnvironment(t *testing.T) {
	tests := []struct {
		env     string
		wantEnv string
		debug   bool
		json    bool
	}{
		{env: "production", wantEnv: logger.EnvProduction, json: true},
		{env: "prod", wantEnv: logger.EnvProduction, json: true},
		{env: "stage", wantEnv: logger.EnvStaging, json: true},
		{env: "development", wantEnv: logger.EnvDevelopment, debug: true},
		{env: "", wantEnv: logger.EnvDevelopment, debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := logger.New(logger.WithEnvironment(tt.env, "notifyhub"), logger.WithOutput(buf))
			log.Debug("dbg")
			assert.Equal(t, tt.debug, buf.Len() > 0)

			buf.Reset()
			log.Info("msg")
			if tt.json {
				entry := decode(t, buf)
				assert.Equal(t, tt.wantEnv, entry["env"])
				assert.Equal(t, "notifyhub", entry["service"])
			} else {
				assert.Contains(t, buf.String(), "env="+tt.wantEnv)
				assert.Contains(t, buf.String(), "service=notifyhub")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := logger.ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	l, err = logger.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	_, err = logger.ParseLevel("loud")
	assert.Error(t, err)
}

func TestAttrs(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, "error", logger.Error(err).Key)
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))

	errs := logger.Errors(err, nil, errors.New("second"))
	require.Equal(t, slog.KindGroup, errs.Value.Kind())
	assert.Len(t, errs.Value.Group(), 2)
	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))

	assert.Equal(t, "user_id", logger.UserID("u1").Key)
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.Equal(t, "notification_id", logger.NotificationID("n1").Key)
	assert.True(t, logger.NotificationID("").Equal(slog.Attr{}))
	assert.Equal(t, "request_id", logger.RequestID("r").Key)
	assert.Equal(t, "task_id", logger.TaskID("t").Key)
	assert.Equal(t, "email", logger.Channel("email").Value.String())
	assert.Equal(t, "type_opted_out", logger.Reason("type_opted_out").Value.String())
	assert.Equal(t, "status", logger.Status("sent").Key)
	assert.Equal(t, "notification_type", logger.NotificationType("promotions").Key)
	assert.Equal(t, "component", logger.Component("dispatcher").Key)

	g := logger.Group("req", slog.String("id", "1"))
	assert.Equal(t, "req", g.Key)
	assert.Len(t, g.Value.Group(), 1)
}
