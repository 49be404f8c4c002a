package main

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ramzeth/asnranger/util/logs"
)

var (
	logOptions = logs.DefaultOptions()
	logger     = logrus.StandardLogger()
	logCloser  io.Closer
)

var mainCommand = &cobra.Command{
	Use:               "iptoasn",
	Short:             "IP address to AS number lookup service",
	PersistentPreRunE: preRun,
	PersistentPostRun: postRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	flags := mainCommand.PersistentFlags()
	flags.StringVar(&logOptions.Level, "log-level", envOr("IPTOASN_LOG_LEVEL", logOptions.Level), "log level: trace, debug, info, warn, error, off")
	flags.StringVar(&logOptions.Format, "log-format", envOr("IPTOASN_LOG_FORMAT", logOptions.Format), "log format: text or json")
	flags.StringVar(&logOptions.Output, "log-output", envOr("IPTOASN_LOG_OUTPUT", logOptions.Output), "log output: stdout, stderr, file, both or off")
	flags.StringVar(&logOptions.File, "log-file", envOr("IPTOASN_LOG_FILE", logOptions.File), "log file, rotated when it grows large")
}

func main() {
	if err := mainCommand.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func preRun(cmd *cobra.Command, args []string) error {
	l, closer, err := logs.New(logOptions)
	if err != nil {
		return err
	}
	logger = l
	logCloser = closer
	return nil
}

func postRun(cmd *cobra.Command, args []string) {
	if logCloser != nil {
		logCloser.Close()
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// envDuration is envOr for durations. Unparsable values are reported and
// ignored.
func envDuration(key string, fallback time.Duration) time.Duration {
	value := envOr(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithError(err).Warnf("ignoring %s", key)
		return fallback
	}
	return d
}
