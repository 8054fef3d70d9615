package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"market_assistant/src/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger stays silent until InitLogger runs, so packages can log from tests
var Logger = zerolog.Nop()

// InitLogger initializes the global logger with the provided configuration
func InitLogger(config model.LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	switch strings.ToLower(config.TimeFormat) {
	case "unix":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	case "iso8601":
		zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000Z07:00"
	default:
		zerolog.TimeFieldFormat = time.RFC3339
	}

	var output io.Writer
	switch strings.ToLower(config.Output) {
	case "stderr":
		output = os.Stderr
	case "file":
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file '%s': %w", config.FilePath, err)
		}
		output = file
	default:
		output = os.Stdout
	}

	if strings.ToLower(config.Format) == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	Logger = zerolog.New(output).With().
		Timestamp().
		Caller().
		Str("service", "market-assistant").
		Logger()

	// Also set the global zerolog logger for compatibility
	log.Logger = Logger

	Logger.Debug().
		Str("level", config.Level).
		Str("format", config.Format).
		Str("output", config.Output).
		Msg("Logger initialized successfully")

	return nil
}

// GetLogger returns the configured logger instance
func GetLogger() *zerolog.Logger {
	return &Logger
}

// Component returns a child logger tagged with the component name
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Convenience methods for common logging patterns
func Info() *zerolog.Event {
	return Logger.Info()
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
