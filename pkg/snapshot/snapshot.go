// Package snapshot holds the per-process dataset the skyline is drawn from.
//
// A [Snapshot] maps an entity name (a process name) to the records of every
// running instance with that name. One fetch produces one snapshot, and a
// newer snapshot replaces an older one wholesale; snapshots are never
// merged or edited in place.
//
// The JSON form is the one served at /processes:
//
//	{
//	  "id": "6f1c...",
//	  "taken_at": "2024-05-01T12:00:00Z",
//	  "process_map": {
//	    "postgres": [{"pid": 812, "mem_percent": 3.1, "cpu_percent": 0.4, "cmd_line": "postgres -D /data"}]
//	  }
//	}
//
// Only process_map is required; a missing id is filled in on decode.
package snapshot

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/grid"
)

// Record is one running instance of an entity.
type Record struct {
	PID        int32   `json:"pid" toml:"pid"`
	MemPercent float64 `json:"mem_percent" toml:"mem_percent"`
	CPUPercent float64 `json:"cpu_percent" toml:"cpu_percent"`
	CmdLine    string  `json:"cmd_line,omitempty" toml:"cmd_line,omitempty"`
}

// Entry is one entity and its records in stacking order.
type Entry struct {
	Name    string
	Records []Record
}

// Metric selects which record field drives cube heights.
type Metric string

const (
	MetricMem Metric = "mem"
	MetricCPU Metric = "cpu"
)

// ParseMetric resolves a metric name. The empty string selects MetricMem.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "", "memory":
		return MetricMem, nil
	case MetricMem, MetricCPU:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMetric, "unknown metric %q (want mem or cpu)", s)
}

// Of returns the magnitude m selects from r.
func (m Metric) Of(r Record) float64 {
	if m == MetricCPU {
		return r.CPUPercent
	}
	return r.MemPercent
}

// Snapshot is an immutable, atomically produced dataset.
type Snapshot struct {
	ID        string              `json:"id"`
	TakenAt   time.Time           `json:"taken_at"`
	Processes map[string][]Record `json:"process_map"`
}

// New stamps processes with a fresh ID and the current time.
func New(processes map[string][]Record) Snapshot {
	if processes == nil {
		processes = map[string][]Record{}
	}
	return Snapshot{
		ID:        uuid.NewString(),
		TakenAt:   time.Now().UTC(),
		Processes: processes,
	}
}

// IsZero reports whether s was never populated.
func (s Snapshot) IsZero() bool {
	return s.ID == "" && len(s.Processes) == 0
}

// Len returns the number of entities.
func (s Snapshot) Len() int { return len(s.Processes) }

// Instances returns the total number of records across entities.
func (s Snapshot) Instances() int {
	n := 0
	for _, recs := range s.Processes {
		n += len(recs)
	}
	return n
}

// Values returns the magnitudes of name's records in stacking order, or nil
// if name is unknown.
func (s Snapshot) Values(name string, m Metric) []float64 {
	recs, ok := s.Processes[name]
	if !ok {
		return nil
	}
	vals := make([]float64, len(recs))
	for i, r := range recs {
		vals[i] = m.Of(r)
	}
	return vals
}

// Entries returns every entity sorted by name.
func (s Snapshot) Entries() []Entry {
	entries := make([]Entry, 0, len(s.Processes))
	for name, recs := range s.Processes {
		entries = append(entries, Entry{Name: name, Records: recs})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Name, b.Name) })
	return entries
}

// Items converts the snapshot into rankable grid items under metric m.
func (s Snapshot) Items(m Metric) []grid.Item {
	entries := s.Entries()
	items := make([]grid.Item, len(entries))
	for i, e := range entries {
		items[i] = grid.Item{Name: e.Name, Values: s.Values(e.Name, m)}
	}
	return items
}

// Validate rejects blank entity names and negative or NaN magnitudes.
func (s Snapshot) Validate() error {
	for name, recs := range s.Processes {
		if err := errors.ValidateEntityName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "entity %q", name)
		}
		for i, r := range recs {
			if bad(r.MemPercent) || bad(r.CPUPercent) {
				return errors.New(errors.ErrCodeInvalidSnapshot,
					"entity %q record %d: magnitudes must be finite and non-negative (mem %v, cpu %v)",
					name, i, r.MemPercent, r.CPUPercent)
			}
		}
	}
	return nil
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}
