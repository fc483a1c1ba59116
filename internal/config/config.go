// Package config loads the sectorview settings from a file, the environment
// and command line flags using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/raykavin/sectorview/pkg/core"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

// EnvPrefix prefixes every environment variable, e.g. SECTORVIEW_SERVER_PORT
const EnvPrefix = "SECTORVIEW"

var (
	ErrMissingDataPath = errors.New("data path is required")
	ErrInvalidPort     = errors.New("invalid port")
	ErrInvalidDefault  = errors.New("invalid default range")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidDelim    = errors.New("delimiter must be a single character")
)

// Config is the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// ServerConfig holds the dashboard server settings. Durations accept
// days and weeks as well, e.g. "1d" or "2h30m".
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Debug           bool   `mapstructure:"debug"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// DataConfig describes the input file
type DataConfig struct {
	Path             string   `mapstructure:"path"`
	Delimiter        string   `mapstructure:"delimiter"`
	VolatilityColumn string   `mapstructure:"volatility_column"`
	BetaColumn       string   `mapstructure:"beta_column"`
	Metrics          []string `mapstructure:"metrics"`
}

// DefaultsConfig is the control state shown before any interaction
type DefaultsConfig struct {
	Sector string `mapstructure:"sector"`
	Metric string `mapstructure:"metric"`
	Range  int    `mapstructure:"range"`
}

// New returns a viper instance with defaults and environment binding
func New() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("data.path", "")
	v.SetDefault("data.delimiter", "")
	v.SetDefault("data.volatility_column", core.DefaultVolatilityColumn)
	v.SetDefault("data.beta_column", core.DefaultBetaColumn)
	v.SetDefault("data.metrics", []string{})
	v.SetDefault("defaults.sector", core.AllSectors)
	v.SetDefault("defaults.metric", "")
	v.SetDefault("defaults.range", core.MaxRangePct)

	return v
}

// Load reads the optional config file into v and decodes the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that cannot be fixed later
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Path) == "" {
		return ErrMissingDataPath
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	if c.Defaults.Range < core.MinRangePct || c.Defaults.Range > core.MaxRangePct {
		return fmt.Errorf("%w: %d", ErrInvalidDefault, c.Defaults.Range)
	}

	if _, err := c.Data.DelimiterRune(); err != nil {
		return err
	}

	if _, _, _, err := c.Server.Timeouts(); err != nil {
		return err
	}

	return nil
}

// Timeouts parses the read, write and shutdown timeouts
func (s ServerConfig) Timeouts() (read, write, shutdown time.Duration, err error) {
	durations := make([]time.Duration, 0, 3)
	for _, raw := range []string{s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout} {
		d, err := str2duration.ParseDuration(raw)
		if err != nil || d < 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
		durations = append(durations, d)
	}
	return durations[0], durations[1], durations[2], nil
}

// DelimiterRune returns the configured delimiter, 0 when unset
func (d DataConfig) DelimiterRune() (rune, error) {
	switch {
	case d.Delimiter == "":
		return 0, nil
	case d.Delimiter == `\t`:
		return '\t', nil
	case utf8.RuneCountInString(d.Delimiter) != 1:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelim, d.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	return r, nil
}

// ControlState returns the configured defaults as a control state
func (d DefaultsConfig) ControlState() core.ControlState {
	return core.ControlState{
		Sector:   d.Sector,
		Metric:   d.Metric,
		RangePct: d.Range,
	}
}
