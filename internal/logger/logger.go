// Package logger provides configured zerolog loggers.
package logger

import (
	"io"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns a JSON zerolog.Logger writing to stdout, tagged with service.
// Call sites should use .Stack() on error events to include stacks.
func New(service string) zerolog.Logger {
	return newJSON(os.Stdout, service)
}

func newJSON(w io.Writer, service string) zerolog.Logger {
	installStackMarshalers()
	return zerolog.New(w).With().
		Str("service", service).
		Timestamp().
		Logger()
}

// Console returns a human-readable logger on stderr at level, for the CLI.
func Console(level zerolog.Level) zerolog.Logger {
	return newConsole(os.Stderr, level)
}

func newConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	installStackMarshalers()
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// installStackMarshalers makes zerolog render pkg/errors stacks, attaching
// one to plain errors when .Stack() is requested.
func installStackMarshalers() {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}
}
