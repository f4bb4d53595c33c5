package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "hostel_hub").Logger()
}
