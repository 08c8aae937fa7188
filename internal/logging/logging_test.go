package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, NewDefaultConfig().Validate())
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		cfg := Config{Level: "verbose", Format: "json"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		cfg := Config{Level: "info", Format: "xml"}
		assert.Error(t, cfg.Validate())
	})
}

func TestNew(t *testing.T) {
	t.Run("builds json logger", func(t *testing.T) {
		logger, err := New(Config{Level: "debug", Format: "json"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(-1)) // debug enabled
	})

	t.Run("builds console logger", func(t *testing.T) {
		logger, err := New(Config{Level: "warn", Format: "console"})
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(0)) // info filtered
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		_, err := New(Config{Level: "nope", Format: "json"})
		assert.Error(t, err)
	})
}
