// Package logging builds the service's logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string
	Format string
	// File, when set, receives a copy of every entry through a size-rotated writer.
	File string
}

// New returns a configured logger and a closer for the rotating file, if any.
func New(opts Options, stdout io.Writer) (*logrus.Logger, func() error, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
	}
	logger.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("log format: unknown %q", opts.Format)
	}

	closer := func() error { return nil }
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			LocalTime:  true,
		}
		logger.SetOutput(io.MultiWriter(stdout, rotating))
		closer = rotating.Close
	} else {
		logger.SetOutput(stdout)
	}
	return logger, closer, nil
}
