// Package logs configures the logrus logger shared by the webservice, the
// updater and the command line.
package logs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where and how log entries are written.
//
// Output is one of "stdout", "stderr", "file", "both" (stdout and file) or
// "off". File options only apply when a file output is selected.
type Options struct {
	Level      string
	Format     string // "text" or "json"
	Output     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// New returns a logger configured by opts. The returned closer releases the
// log file, if any.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	var writers []io.Writer
	output := strings.ToLower(opts.Output)
	switch output {
	case "", "stdout":
		writers = append(writers, os.Stdout)
	case "stderr":
		writers = append(writers, os.Stderr)
	case "off":
		writers = append(writers, io.Discard)
	case "file", "both":
		if opts.File == "" {
			return nil, nil, fmt.Errorf("log output %q requires a log file", opts.Output)
		}
		if output == "both" {
			writers = append(writers, os.Stdout)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
			LocalTime:  true,
		}
		writers = append(writers, lj)
		closer = lj
	default:
		return nil, nil, fmt.Errorf("unknown log output %q", opts.Output)
	}
	logger.SetOutput(io.MultiWriter(writers...))
	return logger, closer, nil
}

// ParseLevel accepts logrus level names plus "warning" and "off". An empty
// level means info.
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return logrus.InfoLevel, nil
	case "off", "disabled":
		return logrus.PanicLevel, nil
	}
	return logrus.ParseLevel(level)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
