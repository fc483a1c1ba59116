package sectorview

import (
	"os"
	"strconv"

	"github.com/raykavin/sectorview/pkg/logger/zerolog"
)

const (
	// Default configuration values
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

// Environment variable names
const (
	envLogLevel      = "SECTORVIEW_LOG_LEVEL"
	envLogTimeFormat = "SECTORVIEW_LOG_TIME_FORMAT"
	envLogColor      = "SECTORVIEW_LOG_COLOR"
	envLogJSON       = "SECTORVIEW_LOG_JSON"
)

func init() {
	log, err := NewLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = log
}

// NewLogger builds a logger configured from environment variables. Logs go
// to stderr so command output on stdout stays clean.
func NewLogger() (*zerolog.Adapter, error) {
	cfg, err := loggerConfig()
	if err != nil {
		return nil, err
	}

	log, err := zerolog.New(cfg)
	if err != nil {
		return nil, err
	}

	return zerolog.NewAdapter(log), nil
}

func loggerConfig() (zerolog.Config, error) {
	colored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return zerolog.Config{}, err
	}

	json, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return zerolog.Config{}, err
	}

	return zerolog.Config{
		Level:      getEnvWithDefault(envLogLevel, defaultLogLevel),
		TimeLayout: getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat),
		Colored:    colored,
		JSON:       json,
		Out:        os.Stderr,
	}, nil
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
