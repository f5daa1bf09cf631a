// Package logging builds the logrus logger shared by kboard components.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Debug lowers the level to debug. The default is warn.
	Debug bool

	// File, when set, sends output to a size-rotated file instead of Stderr.
	File string

	// Stderr is the fallback output. Nil means os.Stderr.
	Stderr io.Writer
}

// Rotation settings for the log file.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
	MaxAgeDays = 28
)

// New creates a logger. The returned closer releases the log file, if any.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if opts.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	if opts.File == "" {
		out := opts.Stderr
		if out == nil {
			out = os.Stderr
		}
		logger.SetOutput(out)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
		return nil, nil, err
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return logger, file, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
