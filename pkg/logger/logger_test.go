package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Importers such as config log before main calls Configure; init must leave a live logger.
func TestDefaultLoggerIsLiveBeforeConfigure(t *testing.T) {
	e := Warn()
	require.NotNil(t, e, "warn events must not be dropped before Configure")
	assert.True(t, e.Enabled())
	e.Discard()
}

func TestConfigureLevelAndOutput(t *testing.T) {
	t.Cleanup(func() { Configure(Config{Level: "info", Pretty: true, Output: os.Stdout}) })

	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Info().Msg("hidden")
	Warn().Str("file", ".env").Msg("not loaded")
	child := With("service", "visa-notifier")
	child.Error().Msg("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"not loaded"`)
	assert.Contains(t, out, `"file":".env"`)
	assert.Contains(t, out, `"service":"visa-notifier"`)

	Configure(Config{Level: "nonsense", Output: &buf})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
