package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "engine", LevelWarn)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden %d", 2)
	logger.Warn("shown %d", 3)
	logger.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] [engine] shown 3")
	assert.Contains(t, out, "[ERROR] [engine] shown 4")
}

func TestWithScopesComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "", LevelDebug)
	base.Info("root")
	base.With("store").Info("child")

	assert.Contains(t, buf.String(), "[INFO] root")
	assert.Contains(t, buf.String(), "[INFO] [store] child")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" warn ":  LevelWarn,
		"error":   LevelError,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestOrNop(t *testing.T) {
	var nilStd *StdLogger
	assert.True(t, IsNil(nilStd))
	assert.True(t, IsNil(nil))
	assert.NotPanics(t, func() { OrNop(nilStd).Warn("ignored") })

	logger := New(&bytes.Buffer{}, "x", LevelInfo)
	assert.Same(t, logger, OrNop(logger))
}
