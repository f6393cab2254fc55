package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the process logger. Debug mode switches to a human readable
// console writer at debug level. The result also becomes the global logger
// used by the store packages.
func Setup(debug bool) zerolog.Logger {
	return setup(os.Stderr, debug)
}

func setup(out io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Caller().Stack().Logger()
	}

	zerolog.DefaultContextLogger = &logger
	log.Logger = logger

	return logger
}

// WithCommand attaches logger, tagged with the command name, to ctx so that
// services logging through zerolog.Ctx pick it up.
func WithCommand(ctx context.Context, logger zerolog.Logger, command string) context.Context {
	return logger.With().Str("command", command).Logger().WithContext(ctx)
}
