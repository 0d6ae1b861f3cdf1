package source

import (
	"context"

	"github.com/matzehuels/skyline/pkg/snapshot"
)

// File re-reads a snapshot fixture on every fetch, so editing the file
// while the server runs animates the change.
type File struct {
	path string
}

// NewFile returns a File source for path (.json or .toml).
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

func (f *File) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}
	snap, err := snapshot.LoadFile(f.path)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}
