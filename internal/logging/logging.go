// Package logging builds the process logger from the logging configuration.
//
// Components take a standard *log.Logger; Std bridges such a logger onto a
// logrus level so the configured level, format and output apply to them too.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"evalgo.org/microtosca/internal/config"
)

// New creates a logger from cfg. Output is stdout, stderr or a file path
// opened for appending. The returned closer releases the log file; it is a
// no-op for the standard streams.
func New(cfg config.LoggingConfig) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log output: %w", err)
		}
		logger.SetOutput(f)
		closer = f
	}

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Std returns a standard logger whose lines are logged at level. Close the
// returned closer to release the pipe behind it.
func Std(logger *logrus.Logger, level logrus.Level) (*log.Logger, io.Closer) {
	w := logger.WriterLevel(level)
	return log.New(w, "", 0), w
}
