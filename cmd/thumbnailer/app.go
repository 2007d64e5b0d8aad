package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/ironsheep/thumbnailer/internal/cachekey"
	"github.com/ironsheep/thumbnailer/internal/config"
	"github.com/ironsheep/thumbnailer/internal/imaging"
	"github.com/ironsheep/thumbnailer/internal/logging"
	"github.com/ironsheep/thumbnailer/internal/storage"
	"github.com/ironsheep/thumbnailer/internal/thumbcache"
)

// app is the wired object graph behind every command.
type app struct {
	store *storage.Storage
	svc   *thumbcache.Service
}

type appOptions struct {
	allowLocal bool
	memoSize   int

	// registerer receives the thumbnail metrics. Nil skips metrics.
	registerer prometheus.Registerer
}

func newApp(cfg *config.Config, logger logging.Interface, opts appOptions) (*app, error) {
	background, err := imaging.ParseBackground(cfg.Background)
	if err != nil {
		return nil, err
	}
	transformer := imaging.New(
		imaging.WithBounds(cfg.Bounds()),
		imaging.WithQuality(cfg.JPEGQuality),
		imaging.WithBackground(background),
		imaging.WithLogger(logger),
	)

	// The S3 client is built on first use, so commands that never touch S3
	// never load AWS credentials.
	store := storage.New(
		storage.NewLocalBackend(afero.NewOsFs(), logger),
		storage.NewObjectBackend(storage.NewS3ClientFactory(storage.S3Config{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.S3Endpoint,
		}), logger),
	)

	var scheme *cachekey.Scheme
	if cfg.CachingEnabled() {
		root, err := cachekey.ParseRoot(cfg.CacheBucket)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_BUCKET: %w", err)
		}
		scheme = cachekey.New(root)
		logger.Infof("CACHE_BUCKET = %s", root)
	} else {
		logger.Info("Caching disabled")
	}

	var observer thumbcache.Observer
	if opts.registerer != nil {
		o, err := thumbcache.NewPrometheusObserver("thumbnailer", opts.registerer)
		if err != nil {
			return nil, err
		}
		observer = o
	}

	svc, err := thumbcache.New(thumbcache.Options{
		Store:             store,
		Transformer:       transformer,
		Scheme:            scheme,
		AllowLocalSources: opts.allowLocal,
		MemoSize:          opts.memoSize,
		Observer:          observer,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	return &app{store: store, svc: svc}, nil
}
