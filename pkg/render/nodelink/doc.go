// Package nodelink renders a snapshot as a node-link diagram: one box per
// entity connected to one box per running process.
//
// It complements the skyline when the exact per-process numbers matter
// more than the overall shape. Entities are ranked exactly as in the
// skyline and truncated to the same limit, so both views show the same
// set.
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Metric: snapshot.MetricMem, Limit: 25})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses the WebAssembly build of Graphviz bundled with
// goccy/go-graphviz, so no system Graphviz is required.
package nodelink
