package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New logs to stderr, leaving stdout to command output.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stderr)
}

// NewWithWriter is New with an explicit sink. In dev the output is human readable.
func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "dev" {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "offerdb").Logger()
}
