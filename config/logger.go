package config

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the CLI logger. Output goes to stderr unless Log.File is
// set, in which case it goes to a rotating file. The returned closer must be
// called on exit.
func (c *Config) NewLogger() (*slog.Logger, io.Closer, error) {
	lvl, err := c.Log.level()
	if err != nil {
		return nil, nil, err
	}
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if c.Log.File != "" {
		l := &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB, // megabytes
			MaxBackups: c.Log.MaxBackups,
		}
		w, closer = l, l
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
