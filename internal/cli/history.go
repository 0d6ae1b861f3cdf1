package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skyline/pkg/config"
	"github.com/matzehuels/skyline/pkg/history"
	"github.com/matzehuels/skyline/pkg/httputil"
)

type historyOpts struct {
	server string
	limit  int
}

func (c *CLI) historyCommand() *cobra.Command {
	opts := historyOpts{limit: 20}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent snapshot summaries",
		Long: `History reads summaries from the configured history store, or from a
running "skyline serve" with --server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			summaries, err := c.loadHistory(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No snapshots recorded")
				return nil
			}
			fmt.Fprintln(os.Stdout, historyTable(summaries))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "read history from a running skyline server URL")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", opts.limit, "number of summaries")

	return cmd
}

func (c *CLI) loadHistory(ctx context.Context, cfg config.Config, opts historyOpts) ([]history.Summary, error) {
	if opts.server != "" {
		return fetchHistory(ctx, opts.server, cfg.Source.Timeout.Duration, opts.limit)
	}
	if cfg.History.Backend != config.HistoryMongo {
		printWarning("history backend %q keeps nothing between runs; use --server or a mongo backend", cfg.History.Backend)
		return nil, nil
	}
	store, err := newHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Recent(ctx, opts.limit)
}

// fetchHistory reads /history from a skyline server.
func fetchHistory(ctx context.Context, server string, timeout time.Duration, limit int) ([]history.Summary, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/history"

	client := httputil.NewClient(timeout)
	var summaries []history.Summary
	err = httputil.RetryWithBackoff(ctx, func() error {
		return client.GetJSON(ctx, u.String(), &summaries)
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
