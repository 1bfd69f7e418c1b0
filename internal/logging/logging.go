// Package logging builds the zerolog logger. The interactive UI owns the
// terminal, so logs go to a file or nowhere; one-shot commands may log to
// stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o600

// Options selects where logs go. Path wins over Console.
type Options struct {
	Path    string
	Level   string
	Console io.Writer
}

// New returns a logger and a closer for the underlying file, if any.
// Without a path or console writer the logger discards everything.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	switch {
	case opts.Path != "":
		f, err := os.OpenFile(opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		l := zerolog.New(zerolog.SyncWriter(f)).Level(level).With().Timestamp().Logger()
		return l, f, nil
	case opts.Console != nil:
		w := zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: "15:04:05"}
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nopCloser{}, nil
	default:
		return zerolog.Nop(), nopCloser{}, nil
	}
}

func parseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
