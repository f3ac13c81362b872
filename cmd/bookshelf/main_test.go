package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
)

func TestLoggerOptions(t *testing.T) {
	t.Parallel()

	base, err := loggerOptions(appConfig{}, "serve")
	require.NoError(t, err)

	opts, err := loggerOptions(appConfig{LogLevel: "debug", LogFormat: logger.FormatText}, "serve")
	require.NoError(t, err)
	assert.Len(t, opts, len(base)+2)

	_, err = loggerOptions(appConfig{LogLevel: "loud"}, "serve")
	assert.ErrorContains(t, err, "invalid LOG_LEVEL")

	_, err = loggerOptions(appConfig{LogFormat: "yaml"}, "serve")
	assert.ErrorContains(t, err, "invalid LOG_FORMAT")
}
