package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"github.com/rs/zerolog"
)

var log = New(os.Stderr, zerolog.WarnLevel, false)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

type zerologLogger struct {
	zl zerolog.Logger
}

// New returns a console logger writing to out.
func New(out io.Writer, level zerolog.Level, isService bool) Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    isService,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	return &zerologLogger{zl: zerolog.New(output).With().Timestamp().Logger().Level(level)}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}

// Init initializes the package logger. Output goes to stderr; stdout
// carries the readout.
func Init(level string, isService bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	log = New(os.Stderr, lvl, isService)

	return nil
}

// ParseLevel maps a configured level name to a zerolog level. "none"
// disables output.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug", "trace", "verbose":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warning", "warn":
		return zerolog.WarnLevel, nil
	case "error", "err":
		return zerolog.ErrorLevel, nil
	case "none", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, level)
	}
}

// Component returns a child of the package logger tagged with name and
// filtered at its own level.
func Component(name string, level zerolog.Level) Logger {
	l, ok := log.(*zerologLogger)
	if !ok {
		return Nop()
	}

	return &zerologLogger{zl: l.zl.With().Str("component", name).Logger().Level(level)}
}

// Default returns the package logger.
func Default() Logger {
	return log
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}

	return os.Getppid() == 1
}

func (l *zerologLogger) Debug() *LogEvent {
	return &LogEvent{l.zl.Debug()}
}

func (l *zerologLogger) Info() *LogEvent {
	return &LogEvent{l.zl.Info()}
}

func (l *zerologLogger) Warn() *LogEvent {
	return &LogEvent{l.zl.Warn()}
}

func (l *zerologLogger) Error() *LogEvent {
	return &LogEvent{l.zl.Error()}
}

func (l *zerologLogger) ErrorWithCode(err errors.Error) *LogEvent {
	ev := l.zl.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())
	if data := err.GetData(); data != nil {
		ev = ev.Interface("error_data", data)
	}

	return &LogEvent{ev}
}

// Debug logs a debug message
func Debug() *LogEvent {
	return log.Debug()
}

// Info logs an info message
func Info() *LogEvent {
	return log.Info()
}

// Warn logs a warning message
func Warn() *LogEvent {
	return log.Warn()
}

// Error logs an error message
func Error() *LogEvent {
	return log.Error()
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return log.ErrorWithCode(err)
}
