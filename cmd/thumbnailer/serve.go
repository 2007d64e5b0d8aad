package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/thumbnailer/internal/config"
	"github.com/ironsheep/thumbnailer/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve thumbnails over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			a, err := newApp(c.cfg, c.logger, appOptions{
				allowLocal: c.cfg.AllowLocalSources,
				memoSize:   c.cfg.LookupMemoSize,
				registerer: reg,
			})
			if err != nil {
				return err
			}

			srv := server.New(server.Options{
				Service:    a.svc,
				ContentAge: c.cfg.ContentAge,
				Debug:      c.cfg.Debug,
				Logger:     c.logger,
				Gatherer:   reg,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.logger.Infof("thumbnailer %s (built %s, commit %s)", Version, BuildTime, GitCommit)
			return srv.Run(ctx, c.cfg.ListenAddr)
		},
	}

	flags := cmd.Flags()
	flags.String("listen-addr", "", "address to listen on (env LISTEN_ADDR)")
	flags.Int("content-age", 0, "Cache-Control max-age in seconds (env CONTENT_AGE_IN_SECONDS)")
	flags.Bool("allow-local-sources", false, "accept local paths as sources (env ALLOW_LOCAL_SOURCES)")
	flags.Int("lookup-memo-size", 0, "cache lookups remembered in memory, 0 disables (env LOOKUP_MEMO_SIZE)")
	bindFlags(c.v, flags, map[string]string{
		"listen-addr":         config.KeyListenAddr,
		"content-age":         config.KeyContentAge,
		"allow-local-sources": config.KeyAllowLocalSources,
		"lookup-memo-size":    config.KeyLookupMemoSize,
	})
	return cmd
}
