package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/skyline/pkg/grid"
	"github.com/matzehuels/skyline/pkg/render"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

// Options configures diagram generation.
type Options struct {
	Metric snapshot.Metric
	// Limit caps the number of entities; zero or less shows all.
	Limit int
	// Focus highlights one entity.
	Focus string
	// Detailed adds command lines to process nodes.
	Detailed bool
	// Root labels the node every entity hangs off, default "host".
	Root string
}

const focusFill = "#d33682"

// ToDOT converts snap to Graphviz DOT.
func ToDOT(snap snapshot.Snapshot, opts Options) string {
	root := opts.Root
	if root == "" {
		root = "host"
	}

	ranked := grid.Rank(snap.Items(opts.Metric))
	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=\"#002b36\", fontcolor=white];\n", "root", root)
	for _, it := range ranked {
		id := entityID(it.Name)
		attrs := []string{fmt.Sprintf("label=%q", fmt.Sprintf("%s\n%.1f%%", it.Name, it.Total()))}
		if it.Name == opts.Focus {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", focusFill), "fontcolor=white")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
		fmt.Fprintf(&buf, "  %q -> %q;\n", "root", id)

		for _, r := range snap.Processes[it.Name] {
			pid := processID(r.PID)
			fmt.Fprintf(&buf, "  %q [label=%q, fontsize=10];\n", pid, processLabel(r, opts))
			fmt.Fprintf(&buf, "  %q -> %q;\n", id, pid)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func entityID(name string) string { return "entity:" + name }

func processID(pid int32) string { return "pid:" + strconv.Itoa(int(pid)) }

func processLabel(r snapshot.Record, opts Options) string {
	label := fmt.Sprintf("pid %d\n%.2f%%", r.PID, opts.Metric.Of(r))
	if opts.Detailed && r.CmdLine != "" {
		cl := r.CmdLine
		if len(cl) > 48 {
			cl = cl[:45] + "..."
		}
		label += "\n" + cl
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based root element with one whose
// viewBox starts at the origin and whose size is unitless.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPNG renders a DOT graph as PNG. Requires rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders a DOT graph as PDF. Requires rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
