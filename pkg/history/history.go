// Package history records a summary of every snapshot the engine accepts,
// so the CLI can show how the skyline changed over time.
//
// Only summaries are stored: the snapshot ID, when it was taken, how many
// entities and processes it had, and the top entities by total. Full
// process lists are not kept.
package history

import (
	"context"
	"time"

	"github.com/matzehuels/skyline/pkg/grid"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

// TopN is how many leading entities a Summary keeps.
const TopN = 5

// Ranked is one entity in a Summary's leaderboard.
type Ranked struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Summary condenses one snapshot.
type Summary struct {
	ID        string    `json:"id"`
	TakenAt   time.Time `json:"taken_at"`
	Metric    string    `json:"metric"`
	Entries   int       `json:"entries"`
	Processes int       `json:"processes"`
	Top       []Ranked  `json:"top"`
}

// Summarize ranks snap under m and keeps the first n entities.
func Summarize(snap snapshot.Snapshot, m snapshot.Metric, n int) Summary {
	ranked := grid.Rank(snap.Items(m))
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	top := make([]Ranked, len(ranked))
	for i, it := range ranked {
		top[i] = Ranked{Name: it.Name, Total: it.Total()}
	}
	return Summary{
		ID:        snap.ID,
		TakenAt:   snap.TakenAt,
		Metric:    string(m),
		Entries:   snap.Len(),
		Processes: snap.Instances(),
		Top:       top,
	}
}

// Store persists summaries.
type Store interface {
	Record(ctx context.Context, s Summary) error
	// Recent returns up to limit summaries, newest first.
	Recent(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

// NullStore discards everything.
type NullStore struct{}

func (NullStore) Record(context.Context, Summary) error { return nil }

func (NullStore) Recent(context.Context, int) ([]Summary, error) { return nil, nil }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
