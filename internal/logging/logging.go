package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const timeFormat = `2006-01-02 15:04:05`

// Setup installs a console logger on w as the global and context default.
func Setup(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat}).
		Level(level).
		With().
		Timestamp().
		Logger()
	zlog.Logger = log
	zerolog.DefaultContextLogger = &log
	return log
}
