package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/contactbook/internal/config"
)

const timeFormat = "2006-01-02 15:04:05"

// Apply sets the global log level and output writers.
// When console is false (terminal UI mode) only the rotating file is written,
// otherwise log lines would be drawn over the UI.
func Apply(level string, settings config.Logging, console bool) {
	applyLevel(level)
	var stdout io.Writer
	if console {
		stdout = os.Stdout
	}
	log.Logger = zerolog.New(outputs(settings, stdout)).With().Timestamp().Logger()
}

// LevelFromVerbosity maps -v/-vv onto a level, falling back to the configured one
func LevelFromVerbosity(verbosity int, fallback string) string {
	switch {
	case verbosity >= 2:
		return config.LogLevelTrace
	case verbosity == 1:
		return config.LogLevelDebug
	default:
		return fallback
	}
}

func applyLevel(level string) {
	switch level {
	case config.LogLevelTrace:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case config.LogLevelDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.LogLevelWarn:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case config.LogLevelError:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// outputs builds the writers; a nil console means file only
func outputs(settings config.Logging, console io.Writer) io.Writer {
	var writers []io.Writer
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: timeFormat})
	}

	if settings.File != "" {
		if err := ensureLogDir(settings.File); err != nil {
			if console != nil {
				l := zerolog.New(writers[0]).With().Timestamp().Logger()
				l.Error().Err(err).Str("path", settings.File).Msg("Failed to prepare log directory; logging to console only")
			}
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        fileWriter(settings),
				TimeFormat: timeFormat,
				NoColor:    true,
			})
		}
	}

	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	default:
		return zerolog.MultiLevelWriter(writers...)
	}
}

func fileWriter(settings config.Logging) *lumberjack.Logger {
	maxSize := config.DefaultMaxSizeMB
	if settings.MaxSizeMB > 0 {
		maxSize = settings.MaxSizeMB
	}
	return &lumberjack.Logger{
		Filename:   settings.File,
		MaxSize:    maxSize,
		MaxBackups: max(settings.MaxBackups, 0),
		MaxAge:     max(settings.MaxAgeDays, 0),
		Compress:   settings.Compress,
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
