package source

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

// Host reads the local process table. Processes are grouped by executable
// name; within a group records are ordered by PID.
type Host struct {
	logger  *log.Logger
	cmdLine bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostLogger sets the logger used for per-process read failures.
func WithHostLogger(l *log.Logger) HostOption {
	return func(h *Host) { h.logger = l }
}

// WithCmdLine controls whether command lines are collected. Reading them
// costs one extra syscall per process.
func WithCmdLine(enabled bool) HostOption {
	return func(h *Host) { h.cmdLine = enabled }
}

// NewHost returns a Host source.
func NewHost(opts ...HostOption) *Host {
	h := &Host{logger: log.Default(), cmdLine: true}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Name() string { return "host" }

// Fetch lists all processes. Processes that exit mid-scan or whose name or
// memory cannot be read are skipped.
func (h *Host) Fetch(ctx context.Context) (snapshot.Snapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return snapshot.Snapshot{}, errors.Wrap(errors.ErrCodeInternal, err, "list processes")
	}

	groups := make(map[string][]snapshot.Record)
	skipped := 0
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return snapshot.Snapshot{}, errors.Wrap(errors.ErrCodeTimeout, err, "list processes")
		}
		name, rec, ok := h.read(ctx, p)
		if !ok {
			skipped++
			continue
		}
		groups[name] = append(groups[name], rec)
	}
	for name := range groups {
		slices.SortFunc(groups[name], func(a, b snapshot.Record) int { return cmp.Compare(a.PID, b.PID) })
	}
	if skipped > 0 {
		h.logger.Debug("skipped unreadable processes", "count", skipped)
	}

	snap := snapshot.New(groups)
	if err := snap.Validate(); err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}

func (h *Host) read(ctx context.Context, p *process.Process) (string, snapshot.Record, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil || strings.TrimSpace(name) == "" {
		return "", snapshot.Record{}, false
	}
	mem, err := p.MemoryPercentWithContext(ctx)
	if err != nil {
		return "", snapshot.Record{}, false
	}
	rec := snapshot.Record{PID: p.Pid, MemPercent: float64(mem)}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		rec.CPUPercent = cpu
	}
	if h.cmdLine {
		if cl, err := p.CmdlineWithContext(ctx); err == nil {
			rec.CmdLine = cl
		}
	}
	if errors.ValidateEntityName(name) != nil {
		return "", snapshot.Record{}, false
	}
	return name, rec, true
}
