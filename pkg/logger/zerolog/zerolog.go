// Package zerolog builds the console and JSON loggers backed by rs/zerolog.
package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Config describes the log output
type Config struct {
	Level      string    // zerolog level name, e.g. "info"
	TimeLayout string    // layout used for console timestamps
	Colored    bool      // colorize console output
	JSON       bool      // write JSON lines instead of console output
	Out        io.Writer // destination, os.Stdout when nil
}

// New creates a zerolog logger and sets the global level
func New(cfg Config) (*zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	if cfg.JSON {
		log := zerolog.New(out).With().Timestamp().Logger()
		return &log, nil
	}

	console := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !cfg.Colored,
		TimeFormat: cfg.TimeLayout,
	}
	if cfg.Colored {
		console.FormatLevel = formatLevel
		console.FormatMessage = formatMessage
		console.FormatCaller = formatCaller
		console.FormatTimestamp = func(i any) string {
			return formatTimestamp(i, cfg.TimeLayout)
		}
	}

	log := zerolog.New(console).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &log, nil
}

func formatLevel(i any) string {
	level, ok := i.(string)
	if !ok {
		return term.Whitef("[UNK]")
	}

	switch level {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	case zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return term.Redf("[FTL]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i any) string {
	const width = 60

	msg, ok := i.(string)
	if !ok || msg == "" {
		return ">"
	}
	if len(msg) < width {
		msg += strings.Repeat(" ", width-len(msg))
	}
	return term.Whitef("> %s", msg)
}

func formatCaller(i any) string {
	const fileWidth = 18

	name, ok := i.(string)
	if !ok || name == "" {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(name), ":")
	if !found {
		return term.Yellowf("[%s]", file)
	}
	if len(file) > fileWidth {
		file = file[:fileWidth]
	}
	return term.Yellowf("[%-*s:%4s]", fileWidth, file, line)
}

func formatTimestamp(i any, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return term.Cyanf("[%v]", i)
	}

	if ts, err := time.Parse(zerolog.TimeFieldFormat, raw); err == nil {
		raw = ts.Local().Format(layout)
	}
	return term.Cyanf("[%s]", raw)
}
