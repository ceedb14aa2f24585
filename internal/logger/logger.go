package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures the process-wide zerolog level and returns the root
// logger. format "pretty" selects the human console writer for dev;
// anything else emits JSON lines for production ingestion.
func Setup(level, format string) zerolog.Logger {
	var writer io.Writer = os.Stdout
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}
