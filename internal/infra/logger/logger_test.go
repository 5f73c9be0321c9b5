package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("prod", &buf)

	log.Debug().Msg("hidden")
	log.Info().Int64("offer_id", 7).Msg("offer registered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "offer registered", entry["message"])
	assert.Equal(t, "offerdb", entry["service"])
	assert.EqualValues(t, 7, entry["offer_id"])
}

func TestDevLoggerEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("dev", &buf)

	log.Debug().Msg("statement traced")
	assert.Contains(t, buf.String(), "statement traced")
}
