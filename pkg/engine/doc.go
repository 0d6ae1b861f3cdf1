// Package engine runs a live skyline.
//
// An [Engine] is a single-owner actor. [Engine.Run] starts one goroutine
// that owns the scene state; timers, finished fetches, clicks and frame
// queries all reach it over channels and are handled one at a time, so no
// lock guards the state.
//
// Two timers drive it. The refresh timer fires on a fixed interval
// whether or not an animation is playing and starts a fetch on a separate
// goroutine; a successful fetch replaces the snapshot and restarts the
// rotation, a failed one is logged and changes nothing. The tick timer
// runs only while the rotation plays and stops once the counter reaches
// zero.
//
//	eng := engine.New(source.NewHost(), engine.WithLogger(logger))
//	go eng.Run(ctx)
//	frame, err := eng.Frame(ctx)
package engine
