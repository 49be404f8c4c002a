package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Ramzeth/asnranger"
	"github.com/Ramzeth/asnranger/loader"
	"github.com/Ramzeth/asnranger/webservice"
)

const (
	defaultListen = "127.0.0.1:53661"
	defaultSource = "https://iptoasn.com/data/ip2asn-combined.tsv.gz"
)

// serveOptions configures a serve run.
type serveOptions struct {
	Listen      string
	Source      string
	Refresh     time.Duration
	WorkDir     string
	StopTimeout time.Duration
}

var serveOpts serveOptions

var commandServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve AS lookups over HTTP and keep the dataset fresh",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, serveOpts)
	},
}

func init() {
	flags := commandServe.Flags()
	flags.StringVarP(&serveOpts.Listen, "listen", "l", envOr("IPTOASN_LISTEN", defaultListen), "listen address")
	flags.StringVarP(&serveOpts.Source, "source", "s", envOr("IPTOASN_SOURCE", defaultSource), "dataset URL or local path")
	flags.DurationVar(&serveOpts.Refresh, "refresh", envDuration("IPTOASN_REFRESH", loader.DefaultInterval), "dataset refresh interval")
	flags.StringVar(&serveOpts.WorkDir, "work-dir", envOr("IPTOASN_WORK_DIR", ""), "directory for in-flight downloads")
	flags.DurationVar(&serveOpts.StopTimeout, "shutdown-timeout", envDuration("IPTOASN_SHUTDOWN_TIMEOUT", 10*time.Second), "time allowed for in-flight requests on shutdown")
	mainCommand.AddCommand(commandServe)
}

// serve loads the dataset once, then runs the updater and the webservice
// until ctx is done. A failed initial load is returned before anything
// listens.
func serve(ctx context.Context, opts serveOptions) error {
	store := asnranger.NewStore(nil)
	updater, err := loader.NewUpdater(store, loader.UpdaterOptions{
		Source:   opts.Source,
		Interval: opts.Refresh,
		WorkDir:  opts.WorkDir,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	logger.WithField("source", opts.Source).Info("loading initial dataset")
	if _, err := updater.Refresh(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	server := webservice.New(asnranger.NewResolver(store), logger)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		updater.Run(ctx)
		return nil
	})
	group.Go(func() error {
		return server.Start(opts.Listen)
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.StopTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
