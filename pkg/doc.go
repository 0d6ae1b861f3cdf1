// Package pkg holds the libraries behind skyline, an isometric "cube
// skyline" of the processes running on a host.
//
// # Overview
//
// Processes are grouped by name into entities. Each entity becomes a cube
// whose height grows with the log of its summed memory or CPU share; the
// busiest entities sit nearest the center of a diamond grid. Every new
// snapshot rotates the camera a quarter turn into place.
//
//	source (host, remote, file)
//	         ↓
//	    [snapshot] entities and their process records
//	         ↓
//	    [grid] ranking and cell assignment
//	         ↓
//	    [cube] + [iso] geometry under an isometric projection
//	         ↓
//	    [scene] shapes for one animation phase and focus
//	         ↓
//	    [render/sink] SVG, JSON, PNG, PDF
//
// [engine] owns the live state: it fetches snapshots on an interval, steps
// the animation and applies focus clicks. [server] and the CLI drive it.
//
// # Quick Start
//
//	snap, _ := snapshot.LoadFile("host.toml")
//	shapes := scene.Render(snap, anim.Frames, scene.Focus{}, scene.DefaultOptions())
//	svg := sink.RenderSVG(shapes)
//
// # Infrastructure
//
//   - [cache]: rendered frame cache (file, Redis)
//   - [history]: snapshot summaries (memory, MongoDB)
//   - [observability]: hooks and Prometheus metrics
//   - [config]: TOML configuration
//   - [errors]: coded errors and their HTTP status
package pkg
