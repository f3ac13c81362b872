package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

type ctxKey struct{}

func TestNew_JSONWithAttrsAndExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat(logger.FormatJSON),
		logger.WithAttr(slog.String("service", "bookshelf")),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(ctxKey{}).(string)
			return slog.String("request_id", v), ok
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.InfoContext(ctx, "hello", logger.Provider("google"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "bookshelf", rec["service"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "google", rec["provider"])
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("development uses text and debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithEnvironment("development", "svc"))
		log.Debug("debugging")

		out := buf.String()
		assert.Contains(t, out, "msg=debugging")
		assert.Contains(t, out, "env=development")
		assert.Contains(t, out, "service=svc")
	})

	t.Run("prod alias uses json and info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithEnvironment("prod", ""))
		log.Debug("hidden")
		assert.Zero(t, buf.Len())

		log.Info("visible")
		assert.True(t, strings.HasPrefix(buf.String(), "{"))
		assert.Contains(t, buf.String(), `"env":"production"`)
	})
}

func TestWithFormat_PanicsOnUnknown(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.New(logger.WithFormat("xml"))
	})
}

func TestNewWithSentry_NoDSNFallsBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithSentry(logger.SentryConfig{}, logger.WithOutput(&buf))
	log.Error("plain")
	assert.Contains(t, buf.String(), "plain")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { logger.Discard().Error("nothing") })
}
