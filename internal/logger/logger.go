// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction
type Options struct {
	Level  string
	Format string
	// File, when set, receives a copy of every entry through a rotating writer.
	File string
}

// NewLogger creates a new configured logger instance
func NewLogger(opts Options) *logrus.Logger {
	logger := logrus.New()

	var out io.Writer = os.Stdout
	if opts.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
			Compress:   true,
		})
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", opts.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(newFormatter(opts.Format))

	return logger
}

func newFormatter(format string) logrus.Formatter {
	if format == "json" || os.Getenv("ENVIRONMENT") == "production" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
}

// WithComponent returns an entry tagged with the component field
func WithComponent(base *logrus.Logger, component string) *logrus.Entry {
	return base.WithField("component", component)
}
