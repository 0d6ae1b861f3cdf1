// Package source produces snapshots for the engine.
//
// Every implementation of [Source] returns a complete, validated snapshot
// per call or an error; it never returns a partial dataset. The engine
// calls Fetch from its own goroutine and treats a failure as "keep the
// previous snapshot".
//
// Available sources:
//
//   - [Host] reads the local process table with gopsutil
//   - [Remote] polls another skyline's /processes endpoint
//   - [File] re-reads a JSON or TOML fixture on every fetch
//   - [Static] always returns the same snapshot
package source

import (
	"context"

	"github.com/matzehuels/skyline/pkg/snapshot"
)

// Source fetches snapshots.
type Source interface {
	Fetch(ctx context.Context) (snapshot.Snapshot, error)
	// Name labels the source in logs and metrics.
	Name() string
}

// Static serves a fixed snapshot.
type Static struct {
	Snapshot snapshot.Snapshot
}

// NewStatic returns a Static source for snap.
func NewStatic(snap snapshot.Snapshot) *Static {
	return &Static{Snapshot: snap}
}

func (s *Static) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}
	return s.Snapshot, nil
}

func (s *Static) Name() string { return "static" }

// Func adapts a function to Source.
type Func func(ctx context.Context) (snapshot.Snapshot, error)

func (f Func) Fetch(ctx context.Context) (snapshot.Snapshot, error) { return f(ctx) }

func (f Func) Name() string { return "func" }
