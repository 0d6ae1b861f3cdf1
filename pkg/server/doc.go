// Package server exposes a running skyline over HTTP.
//
// The routes are:
//
//	GET  /             live page polling /scene.svg
//	GET  /processes    current snapshot as JSON
//	GET  /scene.svg    current frame, clickable
//	GET  /scene.json   current frame geometry
//	GET  /scene.dot    current snapshot as a Graphviz node-link graph
//	GET  /history      recent snapshot summaries
//	POST /focus/{name} toggle focus on an entity
//	POST /refresh      fetch a new snapshot now
//	GET  /health       liveness check
//	GET  /metrics      Prometheus metrics, when enabled
//
// Rendered frames are cached by snapshot ID, animation counter, focus and
// format, so pollers hitting a settled scene share one render.
package server
