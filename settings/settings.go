// Package settings loads process-wide notetrack settings from defaults, an
// optional YAML file, NOTETRACK_* environment variables and command-line
// flags, in increasing order of precedence.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/notetrack/engine"
	"github.com/spektr-org/notetrack/internal/logging"
	"github.com/spektr-org/notetrack/tracker"
)

// EnvPrefix prefixes environment overrides, e.g. NOTETRACK_DEFAULT_PERIOD.
const EnvPrefix = "NOTETRACK"

// Keys.
const (
	KeyDefaultPeriod = "default_period"
	KeyWeekStart     = "week_start"
	KeyRoot          = "root"
	KeyCacheSize     = "cache_size"
	KeyConcurrency   = "concurrency"
	KeyWatchDebounce = "watch_debounce"
	KeyLogLevel      = "log_level"
)

// Settings are the effective process-wide settings.
type Settings struct {
	DefaultPeriod string        `mapstructure:"default_period"`
	WeekStart     string        `mapstructure:"week_start"`
	Root          string        `mapstructure:"root"`
	CacheSize     int           `mapstructure:"cache_size"`
	Concurrency   int           `mapstructure:"concurrency"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	LogLevel      string        `mapstructure:"log_level"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		DefaultPeriod: string(tracker.PeriodAllTime),
		WeekStart:     "monday",
		Root:          ".",
		CacheSize:     256,
		Concurrency:   8,
		WatchDebounce: 750 * time.Millisecond,
		LogLevel:      "info",
	}
}

// FlagKeys maps command-line flag names to setting keys for Load.
var FlagKeys = map[string]string{
	"period":    KeyDefaultPeriod,
	"root":      KeyRoot,
	"log-level": KeyLogLevel,
}

// Load resolves settings. path names an optional YAML file ("" for none; a
// named file must exist). flags may be nil; only flags the user set
// override file and environment values.
func Load(path string, flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyDefaultPeriod, d.DefaultPeriod)
	v.SetDefault(KeyWeekStart, d.WeekStart)
	v.SetDefault(KeyRoot, d.Root)
	v.SetDefault(KeyCacheSize, d.CacheSize)
	v.SetDefault(KeyConcurrency, d.Concurrency)
	v.SetDefault(KeyWatchDebounce, d.WatchDebounce)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.DefaultPeriod = strings.ToLower(strings.TrimSpace(s.DefaultPeriod))
	s.WeekStart = strings.ToLower(strings.TrimSpace(s.WeekStart))
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var errs []error
	switch tracker.Period(s.DefaultPeriod) {
	case tracker.PeriodDaily, tracker.PeriodWeekly, tracker.PeriodMonthly,
		tracker.PeriodYearly, tracker.PeriodAllTime:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown period %q", KeyDefaultPeriod, s.DefaultPeriod))
	}
	if _, ok := engine.ParseWeekday(s.WeekStart); !ok {
		errs = append(errs, fmt.Errorf("%s: unknown weekday %q", KeyWeekStart, s.WeekStart))
	}
	if s.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyCacheSize))
	}
	if s.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%s: must be at least 1", KeyConcurrency))
	}
	if s.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive", KeyWatchDebounce))
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown level %q", KeyLogLevel, s.LogLevel))
	}
	return errors.Join(errs...)
}

// Period returns the default tracker period.
func (s Settings) Period() tracker.Period {
	return tracker.Period(s.DefaultPeriod)
}

// Weekday returns the first day of the week (Monday when unset).
func (s Settings) Weekday() time.Weekday {
	if d, ok := engine.ParseWeekday(s.WeekStart); ok {
		return d
	}
	return time.Monday
}

// Level returns the minimum log level.
func (s Settings) Level() logging.Level {
	return logging.ParseLevel(s.LogLevel)
}

// yamlSettings is the YAML shape; durations are written as strings.
type yamlSettings struct {
	DefaultPeriod string `yaml:"default_period"`
	WeekStart     string `yaml:"week_start"`
	Root          string `yaml:"root"`
	CacheSize     int    `yaml:"cache_size"`
	Concurrency   int    `yaml:"concurrency"`
	WatchDebounce string `yaml:"watch_debounce"`
	LogLevel      string `yaml:"log_level"`
}

// YAML encodes the settings in the file format Load reads.
func (s Settings) YAML() ([]byte, error) {
	out, err := yaml.Marshal(yamlSettings{
		DefaultPeriod: s.DefaultPeriod,
		WeekStart:     s.WeekStart,
		Root:          s.Root,
		CacheSize:     s.CacheSize,
		Concurrency:   s.Concurrency,
		WatchDebounce: s.WatchDebounce.String(),
		LogLevel:      s.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return out, nil
}
