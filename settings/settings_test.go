package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/notetrack/internal/logging"
	"github.com/spektr-org/notetrack/tracker"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, tracker.PeriodAllTime, s.Period())
	assert.Equal(t, time.Monday, s.Weekday())
	assert.Equal(t, logging.LevelInfo, s.Level())
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notetrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_period: weekly\nweek_start: Sunday\ncache_size: 16\nwatch_debounce: 2s\nroot: /vault\n"), 0o644))

	t.Setenv("NOTETRACK_CONCURRENCY", "3")
	t.Setenv("NOTETRACK_DEFAULT_PERIOD", "monthly")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("root", ".", "")
	flags.String("period", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "debug"}))

	s, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "monthly", s.DefaultPeriod, "env overrides file")
	assert.Equal(t, time.Sunday, s.Weekday())
	assert.Equal(t, 16, s.CacheSize)
	assert.Equal(t, 3, s.Concurrency)
	assert.Equal(t, 2*time.Second, s.WatchDebounce)
	assert.Equal(t, "/vault", s.Root, "unset flags do not override the file")
	assert.Equal(t, logging.LevelDebug, s.Level())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("NOTETRACK_DEFAULT_PERIOD", "fortnightly")
	t.Setenv("NOTETRACK_CONCURRENCY", "0")
	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_period")
	assert.Contains(t, err.Error(), "concurrency")
}

func TestYAMLRoundTrip(t *testing.T) {
	s := Defaults()
	s.WeekStart = "sunday"
	out, err := s.YAML()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(out, &raw))
	assert.Equal(t, "750ms", raw["watch_debounce"])
	assert.Equal(t, "all-time", raw["default_period"])

	path := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}
