package loader

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/Ramzeth/asnranger"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = time.Hour

// UpdaterOptions configures an Updater.
type UpdaterOptions struct {
	// Source is an http(s) URL or a local file path.
	Source   string
	Interval time.Duration
	// WorkDir holds in-flight downloads.
	WorkDir   string
	UserAgent string
	Logger    logrus.FieldLogger
}

// Updater is the only writer of a Store. It rebuilds the table from its
// source and publishes it whenever the dataset content changes.
type Updater struct {
	store    *asnranger.Store
	source   string
	interval time.Duration
	fetcher  *Fetcher
	logger   logrus.FieldLogger

	// Only touched by Refresh, which is never run concurrently.
	lastSum uint64
	loaded  bool
}

// NewUpdater returns an Updater publishing into store.
func NewUpdater(store *asnranger.Store, opts UpdaterOptions) (*Updater, error) {
	if opts.Source == "" {
		return nil, errors.New("updater: empty source")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Updater{
		store:    store,
		source:   opts.Source,
		interval: opts.Interval,
		fetcher:  NewFetcher(opts.WorkDir, opts.UserAgent),
		logger:   opts.Logger.WithField("source", opts.Source),
	}, nil
}

// Refresh loads the dataset once and publishes it if it differs from the one
// published last. It reports whether a new table was published.
func (u *Updater) Refresh(ctx context.Context) (bool, error) {
	start := time.Now()
	name, data, err := u.read(ctx)
	if err != nil {
		return false, err
	}
	sum := xxhash.Sum64(data)
	if u.loaded && sum == u.lastSum {
		u.logger.Debug("dataset unchanged")
		return false, nil
	}
	table, err := loadBytes(name, data)
	if err != nil {
		return false, err
	}
	version := u.store.Publish(table)
	v4, v6 := table.Coverage()
	u.lastSum = sum
	u.loaded = true
	u.logger.WithFields(logrus.Fields{
		"version":        version,
		"ipv4":           table.Len4(),
		"ipv6":           table.Len6(),
		"ipv4_addresses": v4.String(),
		"ipv6_addresses": v6.String(),
		"duration":       time.Since(start).Round(time.Millisecond),
	}).Info("range table published")
	return true, nil
}

func (u *Updater) read(ctx context.Context) (string, []byte, error) {
	if isURL(u.source) {
		return u.fetcher.Fetch(ctx, u.source)
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(u.source)
	return u.source, data, err
}

// Run refreshes every interval until ctx is done. Failed refreshes are logged
// and the previously published table keeps being served.
func (u *Updater) Run(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := u.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				u.logger.WithError(err).Warn("refresh range table")
			}
		}
	}
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
