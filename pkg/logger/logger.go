// Package logger defines the leveled logger used across sectorview.
package logger

// Level is a logging severity
type Level int8

const (
	Disabled   Level = -1   // Disabled turns logging off.
	TraceLevel Level = iota // TraceLevel is used for very verbose output.
	DebugLevel              // DebugLevel is used for diagnostics such as skipped rows.
	InfoLevel               // InfoLevel is used for lifecycle messages.
	WarnLevel               // WarnLevel is used for recoverable problems.
	ErrorLevel              // ErrorLevel is used for failed requests and I/O.
	FatalLevel              // FatalLevel logs and exits the program.
	NoLevel                 // NoLevel logs without a level.
)

// Logger is implemented by the zerolog adapter and by test doubles
type Logger interface {
	WithField(key string, value any) Logger  // WithField returns a logger with the given key-value pair.
	WithFields(fields map[string]any) Logger // WithFields returns a logger with the given fields.
	WithError(err error) Logger              // WithError returns a logger carrying err.

	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)

	SetLevel(level Level) // SetLevel changes the minimum level written.
	GetLevel() Level      // GetLevel returns the minimum level written.
}
