package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/skyline/pkg/config"
	"github.com/matzehuels/skyline/pkg/engine"
	"github.com/matzehuels/skyline/pkg/observability"
	"github.com/matzehuels/skyline/pkg/server"
)

type serveOpts struct {
	addr    string
	noCache bool
	metrics bool
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{metrics: true}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live skyline over HTTP",
		Long: `Serve runs the engine against the configured source and serves the
scene at / with click-to-focus. The snapshot itself is available at
/processes, so one skyline can act as the remote source of another.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Addr = opts.addr
			}
			return c.runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the frame cache")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "serve Prometheus metrics at /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, opts serveOpts) error {
	sceneOpts, err := cfg.SceneOptions()
	if err != nil {
		return err
	}

	frames, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer frames.Close()

	store, err := newHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	src := c.newSource(cfg)
	eng := engine.New(src,
		engine.WithLogger(c.Logger),
		engine.WithSceneOptions(sceneOpts),
		engine.WithRefreshInterval(cfg.RefreshInterval.Duration),
		engine.WithTickInterval(cfg.TickInterval.Duration),
		engine.WithHistory(store),
	)

	srvOpts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithCache(frames, cfg.Cache.TTL.Duration),
		server.WithHistory(store),
		server.WithPollInterval(cfg.TickInterval.Duration),
	}
	if opts.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := observability.NewPrometheus(reg)
		if err != nil {
			return err
		}
		prom.Install()
		defer observability.Reset()
		srvOpts = append(srvOpts, server.WithMetrics(reg))
	}
	srv := server.New(eng, srvOpts...)

	printInfo("Serving %s", StyleHighlight.Render("http://"+displayAddr(cfg.Addr)))
	printKeyValue("source", src.Name())
	printKeyValue("metric", string(sceneOpts.Metric))
	printKeyValue("refresh", cfg.RefreshInterval.Duration.String())
	printKeyValue("cache", cfg.Cache.Backend)
	printKeyValue("history", cfg.History.Backend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Addr) })
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// displayAddr turns ":8080" into "localhost:8080" for printing.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
