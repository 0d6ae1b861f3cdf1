package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skyline/pkg/grid"
	"github.com/matzehuels/skyline/pkg/snapshot"
	"github.com/matzehuels/skyline/pkg/source"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

type collectOpts struct {
	output  string
	format  string
	from    string
	summary bool
}

func (c *CLI) collectCommand() *cobra.Command {
	opts := collectOpts{summary: true}

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Take one snapshot and write it as JSON or TOML",
		Long: `Collect reads the configured source once, or --from a remote skyline,
and writes the snapshot. The output can be replayed with a file source
or rendered with "skyline render".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromPath(opts.output)
			}
			if opts.format != formatJSON && opts.format != formatTOML {
				return fmt.Errorf("invalid format %q: must be json or toml", opts.format)
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			src := c.newSource(cfg)
			if opts.from != "" {
				src = source.NewRemote(opts.from, cfg.Source.Timeout.Duration)
			}
			metric, err := snapshot.ParseMetric(cfg.Scene.Metric)
			if err != nil {
				return err
			}
			return c.runCollect(cmd.Context(), src, metric, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json (default), toml")
	cmd.Flags().StringVar(&opts.from, "from", "", "collect from a remote skyline or agent URL")
	cmd.Flags().BoolVar(&opts.summary, "summary", opts.summary, "print a ranking table to stderr")

	return cmd
}

func (c *CLI) runCollect(ctx context.Context, src source.Source, metric snapshot.Metric, opts collectOpts) error {
	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, "Collecting from "+src.Name())
	spin.Start()
	snap, err := src.Fetch(ctx)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Collected %d entities, %d processes", snap.Len(), snap.Instances()))

	data, err := encodeSnapshot(snap, opts.format)
	if err != nil {
		return err
	}
	if opts.output == "" {
		os.Stdout.Write(data)
	} else {
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return err
		}
		printFile(opts.output)
	}

	if opts.summary {
		writeRanking(os.Stderr, snap, metric)
	}
	return nil
}

func encodeSnapshot(snap snapshot.Snapshot, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == formatTOML {
		err = snap.WriteTOML(&buf)
	} else {
		err = snap.Encode(&buf)
	}
	return buf.Bytes(), err
}

func writeRanking(w io.Writer, snap snapshot.Snapshot, metric snapshot.Metric) {
	ranked := grid.Rank(snap.Items(metric))
	if len(ranked) > grid.MaxCubes {
		ranked = ranked[:grid.MaxCubes]
	}
	fmt.Fprintln(w, rankingTable(ranked, string(metric)+" %"))
}

// formatFromPath picks toml for .toml outputs and json otherwise.
func formatFromPath(path string) string {
	if filepath.Ext(path) == ".toml" {
		return formatTOML
	}
	return formatJSON
}
