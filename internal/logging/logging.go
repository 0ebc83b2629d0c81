package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// New creates a zerolog.Logger writing to stderr and optionally to logFile.
// format is "json" or "console". When logFile is set the file is rotated by
// lumberjack. The returned cleanup func closes the file; callers must defer it.
func New(level, format, logFile string) (zerolog.Logger, func(), error) {
	lvl := parseLevel(level)

	var stderr io.Writer = os.Stderr
	if format == "console" {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	writers := []io.Writer{stderr}
	cleanup := func() {}

	if logFile != "" {
		f := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "poseidon").
		Logger()
	return logger, cleanup, nil
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
