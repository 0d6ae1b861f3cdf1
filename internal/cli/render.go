package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/engine"
	"github.com/matzehuels/skyline/pkg/render/nodelink"
	"github.com/matzehuels/skyline/pkg/render/sink"
	"github.com/matzehuels/skyline/pkg/scene"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

const (
	vizSkyline  = "skyline"  // isometric cube scene
	vizNodeLink = "nodelink" // Graphviz host → entity → process graph

	defaultPNGScale = 4.0
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string
	vizTypes    []string
	formats     []string
	counter     int
	allFrames   bool
	focus       string
	metric      string
	detailed    bool
	interactive bool
	scale       float64
}

func (c *CLI) renderCommand() *cobra.Command {
	var vizTypesStr, formatsStr string
	opts := renderOpts{counter: anim.Frames, scale: defaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render [snapshot]",
		Short: "Render one frame of a snapshot",
		Long: `Render draws a snapshot file (JSON or TOML) to SVG, JSON, PNG or PDF.
Without a file, one snapshot is taken from the configured source.

The skyline view is drawn at animation frame --counter (default: settled).
--all-frames writes every frame of the rotation, numbered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.vizTypes = splitList(vizTypesStr, vizSkyline)
			opts.formats = splitList(formatsStr, "svg")
			if err := validateRender(&opts); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single type/format) or base path (multiple)")
	cmd.Flags().StringVarP(&vizTypesStr, "type", "t", "", "visualization type(s): skyline (default), nodelink (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf, dot (comma-separated)")
	cmd.Flags().IntVar(&opts.counter, "counter", opts.counter, fmt.Sprintf("animation frame 0..%d", anim.Frames))
	cmd.Flags().BoolVar(&opts.allFrames, "all-frames", false, "write every animation frame (skyline only)")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "highlight this entity")
	cmd.Flags().StringVar(&opts.metric, "metric", "", "metric: mem or cpu (default from config)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label processes with both metrics (nodelink)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "embed the click-to-focus script in SVG output")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

// splitList splits a comma-separated flag, defaulting to def.
func splitList(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	return strings.Split(s, ",")
}

var validFormats = map[string]bool{"svg": true, "json": true, "pdf": true, "png": true, "dot": true}

func validateRender(opts *renderOpts) error {
	for _, f := range opts.formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'json', 'png', 'pdf' or 'dot')", f)
		}
	}
	for _, v := range opts.vizTypes {
		if v != vizSkyline && v != vizNodeLink {
			return fmt.Errorf("invalid type: %s (must be 'skyline' or 'nodelink')", v)
		}
	}
	if opts.counter < 0 || opts.counter > anim.Frames {
		return fmt.Errorf("invalid counter: %d (must be 0..%d)", opts.counter, anim.Frames)
	}
	if opts.scale <= 0 {
		return fmt.Errorf("invalid scale: %g", opts.scale)
	}
	return nil
}

// basePath derives the base output path. An output with a known format
// extension loses it; without output the input name is used.
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.metric != "" {
		cfg.Scene.Metric = opts.metric
	}
	sceneOpts, err := cfg.SceneOptions()
	if err != nil {
		return err
	}

	var snap snapshot.Snapshot
	if input != "" {
		snap, err = snapshot.LoadFile(input)
	} else {
		src := c.newSource(cfg)
		spin := newSpinner(ctx, "Collecting from "+src.Name())
		spin.Start()
		snap, err = src.Fetch(ctx)
		spin.Stop()
	}
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded snapshot: %d entities, %d processes", snap.Len(), snap.Instances())

	var focus scene.Focus
	if opts.focus != "" {
		focus = scene.FocusOn(opts.focus)
	}
	r := frameRenderer{logger: c.Logger, snap: snap, scene: sceneOpts, opts: opts, focus: focus}

	base := basePath(opts.output, input)
	single := len(opts.vizTypes) == 1 && len(opts.formats) == 1 && !opts.allFrames

	for _, vizType := range opts.vizTypes {
		for _, format := range opts.formats {
			counters := []int{opts.counter}
			if opts.allFrames && vizType == vizSkyline {
				counters = counters[:0]
				for i := 0; i <= anim.Frames; i++ {
					counters = append(counters, i)
				}
			}
			for _, counter := range counters {
				data, err := r.render(ctx, vizType, format, counter)
				if errors.Is(err, errSkipFormat) {
					c.Logger.Debugf("Skipping %s/%s (unsupported combination)", vizType, format)
					continue
				}
				if err != nil {
					return fmt.Errorf("%s/%s: %w", vizType, format, err)
				}

				path := opts.output
				if !single || path == "" {
					path = outputName(base, vizType, format, counter, len(opts.vizTypes) > 1, opts.allFrames && vizType == vizSkyline)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				printFile(path)
			}
		}
	}
	return nil
}

// outputName builds base[_type][-NN].format.
func outputName(base, vizType, format string, counter int, withType, withCounter bool) string {
	name := base
	if withType {
		name += "_" + vizType
	}
	if withCounter {
		name += fmt.Sprintf("-%02d", counter)
	}
	return name + "." + format
}

// errSkipFormat marks a type/format combination that has no renderer.
var errSkipFormat = errors.New("skip unsupported format")

type frameRenderer struct {
	logger *log.Logger
	snap   snapshot.Snapshot
	scene  scene.Options
	opts   *renderOpts
	focus  scene.Focus
}

func (r frameRenderer) render(ctx context.Context, vizType, format string, counter int) ([]byte, error) {
	switch vizType {
	case vizNodeLink:
		return r.renderNodeLink(ctx, format)
	default:
		return r.renderSkyline(format, counter)
	}
}

func (r frameRenderer) renderSkyline(format string, counter int) ([]byte, error) {
	st := scene.State{Snapshot: r.snap, Anim: anim.State{Counter: counter}, Focus: r.focus}
	f := engine.FrameOf(st, r.scene)
	r.logger.Debugf("Frame %d: %d cubes, t = %.3f", counter, len(f.Shapes), f.Angle)

	svgOpts := []sink.SVGOption{sink.WithCaption(sink.Caption(f.Angle))}
	if r.opts.interactive {
		svgOpts = append(svgOpts, sink.WithInteraction("focus/"))
	}

	switch format {
	case "svg":
		return sink.RenderSVG(f.Shapes, svgOpts...), nil
	case "json":
		return sink.RenderJSON(f)
	case "png":
		return sink.RenderPNG(f.Shapes, sink.WithScale(r.opts.scale), sink.WithPNGSVGOptions(svgOpts...))
	case "pdf":
		return sink.RenderPDF(f.Shapes, sink.WithPDFSVGOptions(svgOpts...))
	default:
		return nil, errSkipFormat
	}
}

func (r frameRenderer) renderNodeLink(ctx context.Context, format string) ([]byte, error) {
	dot := nodelink.ToDOT(r.snap, nodelink.Options{
		Metric:   r.scene.Metric,
		Limit:    r.scene.MaxCubes,
		Focus:    r.opts.focus,
		Detailed: r.opts.detailed,
	})
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, r.opts.scale/2)
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	default:
		return nil, errSkipFormat
	}
}
