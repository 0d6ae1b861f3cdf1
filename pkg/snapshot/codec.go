package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/matzehuels/skyline/pkg/errors"
)

// Encode writes s as indented JSON.
func (s Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Decode reads a JSON snapshot from r. A missing id or timestamp is filled
// in so every decoded snapshot is distinguishable from its predecessor.
// Decode does not validate; callers decide whether to call Validate.
func Decode(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	return fill(s), nil
}

func fill(s Snapshot) Snapshot {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.TakenAt.IsZero() {
		s.TakenAt = time.Now().UTC()
	}
	if s.Processes == nil {
		s.Processes = map[string][]Record{}
	}
	return s
}

// fixture is the TOML layout: one [[process]] table per running instance.
//
//	[[process]]
//	name = "postgres"
//	pid = 812
//	mem_percent = 3.1
type fixture struct {
	ID      string           `toml:"id,omitempty"`
	TakenAt time.Time        `toml:"taken_at"`
	Process []fixtureProcess `toml:"process"`
}

type fixtureProcess struct {
	Name string `toml:"name"`
	Record
}

// DecodeTOML reads a TOML fixture from r.
func DecodeTOML(r io.Reader) (Snapshot, error) {
	var f fixture
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode toml snapshot")
	}
	s := Snapshot{ID: f.ID, TakenAt: f.TakenAt, Processes: map[string][]Record{}}
	for _, p := range f.Process {
		s.Processes[p.Name] = append(s.Processes[p.Name], p.Record)
	}
	return fill(s), nil
}

// WriteTOML writes s in the fixture layout, entities sorted by name.
func (s Snapshot) WriteTOML(w io.Writer) error {
	f := fixture{ID: s.ID, TakenAt: s.TakenAt}
	for _, e := range s.Entries() {
		for _, r := range e.Records {
			f.Process = append(f.Process, fixtureProcess{Name: e.Name, Record: r})
		}
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}

// LoadFile reads a snapshot from a .json or .toml file.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
		}
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Decode(f)
	case ".toml":
		return DecodeTOML(f)
	}
	return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "snapshot %s: unsupported extension (want .json or .toml)", path)
}
