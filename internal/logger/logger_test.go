package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ProductionJSON(t *testing.T) {
	t.Cleanup(Init)
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "debug", true))

	log.Debug().Str("user_id", "u1").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "hello", line["message"])
	assert.Contains(t, line, "caller")
	assert.Contains(t, line, "time")
}

func TestSetup_Level(t *testing.T) {
	t.Cleanup(Init)
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "warn", true))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestSetup_Console(t *testing.T) {
	t.Cleanup(Init)
	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, "info", false))

	log.Info().Msg("readable")
	assert.Contains(t, buf.String(), "readable")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup(&bytes.Buffer{}, "loud", true))
}
