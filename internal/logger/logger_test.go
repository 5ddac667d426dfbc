package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConfigureLevelAndOutput(t *testing.T) {
	defer Configure(Config{Level: "info", Pretty: true})

	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Warn().Str("component", "test").Msg("disk almost full")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"message":"disk almost full"`)

	Configure(Config{Level: "bogus", Output: &buf})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
