package history

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/skyline/pkg/snapshot"
)

func sample() snapshot.Snapshot {
	return snapshot.New(map[string][]snapshot.Record{
		"alpha": {{PID: 1, MemPercent: 30, CPUPercent: 1}},
		"beta":  {{PID: 2, MemPercent: 10, CPUPercent: 8}, {PID: 3, MemPercent: 5, CPUPercent: 8}},
		"gamma": {{PID: 4, MemPercent: 1, CPUPercent: 0}},
	})
}

func TestSummarize(t *testing.T) {
	snap := sample()

	tests := []struct {
		name    string
		metric  snapshot.Metric
		n       int
		wantTop []string
	}{
		{"mem top two", snapshot.MetricMem, 2, []string{"alpha", "beta"}},
		{"cpu leader", snapshot.MetricCPU, 1, []string{"beta"}},
		{"n beyond size", snapshot.MetricMem, 10, []string{"alpha", "beta", "gamma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(snap, tt.metric, tt.n)
			if s.ID != snap.ID || s.Entries != 3 || s.Processes != 4 || s.Metric != string(tt.metric) {
				t.Errorf("Summary header = %+v", s)
			}
			if len(s.Top) != len(tt.wantTop) {
				t.Fatalf("len(Top) = %d, want %d", len(s.Top), len(tt.wantTop))
			}
			for i, name := range tt.wantTop {
				if s.Top[i].Name != name {
					t.Errorf("Top[%d] = %s, want %s", i, s.Top[i].Name, name)
				}
			}
		})
	}
}

func TestMemoryStoreRing(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(3)

	for i := range 5 {
		if err := m.Record(ctx, Summary{ID: fmt.Sprint(i)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	if fmt.Sprint(ids) != "[4 3 2]" {
		t.Errorf("Recent(0) = %v, want [4 3 2]", ids)
	}

	got, _ = m.Recent(ctx, 1)
	if len(got) != 1 || got[0].ID != "4" {
		t.Errorf("Recent(1) = %+v", got)
	}
}

func TestMemoryStoreEmpty(t *testing.T) {
	got, err := NewMemoryStore(4).Recent(context.Background(), 10)
	if err != nil || len(got) != 0 {
		t.Errorf("Recent on empty store = %v, %v", got, err)
	}
}

func TestNullStore(t *testing.T) {
	var s Store = NullStore{}
	if err := s.Record(context.Background(), Summary{ID: "x"}); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Recent(context.Background(), 5); len(got) != 0 {
		t.Errorf("NullStore kept %d summaries", len(got))
	}
}

func TestMongoDocMapping(t *testing.T) {
	s := Summarize(sample(), snapshot.MetricMem, TopN)

	raw, err := bson.Marshal(toDoc(s))
	if err != nil {
		t.Fatal(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["_id"] != s.ID {
		t.Errorf("_id = %v, want %s", doc["_id"], s.ID)
	}
	for _, key := range []string{"taken_at", "metric", "entries", "processes", "top"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}

	var back summaryDoc
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	got := fromDoc(back)
	if got.ID != s.ID || len(got.Top) != len(s.Top) || got.Top[0] != s.Top[0] {
		t.Errorf("fromDoc(toDoc(s)) = %+v, want %+v", got, s)
	}
	// BSON datetimes carry millisecond precision.
	if got.TakenAt.Sub(s.TakenAt).Abs() > time.Millisecond {
		t.Errorf("TakenAt drifted: %v vs %v", got.TakenAt, s.TakenAt)
	}
}

func TestMongoStoreIntegration(t *testing.T) {
	uri := os.Getenv("SKYLINE_MONGO_URI")
	if uri == "" {
		t.Skip("SKYLINE_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: "skyline_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	s := Summarize(sample(), snapshot.MetricMem, TopN)
	if err := store.Record(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != s.ID {
		t.Errorf("Recent(1) = %+v", got)
	}
}
