package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/engine"
	"github.com/matzehuels/skyline/pkg/scene"
)

const controlTimeout = 2 * time.Second

// controller is the part of the engine the terminal UI drives.
type controller interface {
	Click(ctx context.Context, name string) error
	Refresh(ctx context.Context) error
}

func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the skyline ranking in the terminal",
		Long: `Watch runs the engine in the terminal. Entities are listed by rank
with their totals; enter toggles focus, r fetches a new snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			sceneOpts, err := cfg.SceneOptions()
			if err != nil {
				return err
			}

			frames := make(chan engine.Frame, 1)
			eng := engine.New(c.newSource(cfg),
				engine.WithLogger(newLogger(io.Discard, LogInfo)),
				engine.WithSceneOptions(sceneOpts),
				engine.WithRefreshInterval(cfg.RefreshInterval.Duration),
				engine.WithTickInterval(cfg.TickInterval.Duration),
				engine.WithFrameListener(latest(frames)),
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return eng.Run(gctx) })
			g.Go(func() error {
				defer cancel()
				model := newWatchModel(eng, frames, string(sceneOpts.Metric))
				_, err := tea.NewProgram(model, tea.WithContext(gctx), tea.WithAltScreen()).Run()
				if gctx.Err() != nil {
					return nil
				}
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}
}

// latest returns a frame listener that keeps only the newest frame in ch.
// It never blocks the engine.
func latest(ch chan engine.Frame) func(engine.Frame) {
	return func(f engine.Frame) {
		for {
			select {
			case ch <- f:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}
}

// =============================================================================
// watchModel
// =============================================================================

type frameMsg engine.Frame

type errMsg struct{ err error }

type watchModel struct {
	ctl    controller
	frames <-chan engine.Frame
	frame  engine.Frame
	ready  bool
	cursor int
	metric string
	err    error
}

func newWatchModel(ctl controller, frames <-chan engine.Frame, metric string) watchModel {
	return watchModel{ctl: ctl, frames: frames, metric: metric}
}

func waitFrame(ch <-chan engine.Frame) tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-ch)
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitFrame(m.frames)
}

// ranked returns the shapes ordered by rank instead of paint order.
func (m watchModel) ranked() []scene.Shape {
	shapes := slices.Clone(m.frame.Shapes)
	slices.SortFunc(shapes, func(a, b scene.Shape) int { return a.Rank - b.Rank })
	return shapes
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = engine.Frame(msg)
		m.ready = true
		m.cursor = min(m.cursor, max(len(m.frame.Shapes)-1, 0))
		return m, waitFrame(m.frames)

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.frame.Shapes)-1 {
				m.cursor++
			}
		case "enter", " ":
			shapes := m.ranked()
			if len(shapes) == 0 {
				return m, nil
			}
			name := shapes[m.cursor].Name
			return m, m.control(func(ctx context.Context) error { return m.ctl.Click(ctx, name) })
		case "r":
			return m, m.control(m.ctl.Refresh)
		}
	}
	return m, nil
}

func (m watchModel) control(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		return errMsg{err: fn(ctx)}
	}
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Skyline"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ focus  r refresh  q quit"))
	b.WriteString("\n\n")

	if !m.ready {
		b.WriteString(StyleDim.Render("waiting for the first snapshot…"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	shapes := m.ranked()
	peak := 0.0
	for _, s := range shapes {
		peak = max(peak, s.Total)
	}

	rows := make([][]string, len(shapes))
	for i, s := range shapes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows[i] = []string{
			cursor,
			strconv.Itoa(s.Rank + 1),
			s.Name,
			fmt.Sprintf("%.1f", s.Total),
			strconv.Itoa(s.Instances),
			fmt.Sprintf("(%d,%d)", s.Cell.X, s.Cell.Y),
			bar(s.Total, peak, 20),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Entity", m.metric+" %", "Procs", "Cell", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < len(shapes) && shapes[row].Highlighted {
				return StyleFocus
			}
			if row == m.cursor {
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleIconError.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m watchModel) statusLine() string {
	f := m.frame
	id := f.SnapshotID
	if len(id) > 8 {
		id = id[:8]
	}
	focus := StyleDim.Render("none")
	if f.Focused {
		focus = StyleFocus.Render(f.Focus)
	}
	return fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		StyleDim.Render("snapshot"), StyleValue.Render(id),
		StyleDim.Render("frame"), StyleNumber.Render(fmt.Sprintf("%2d/%d", f.Counter, anim.Frames)),
		StyleDim.Render("t ="), StyleNumber.Render(fmt.Sprintf("%.3f", f.Angle)),
		StyleDim.Render("focus"), focus,
	)
}

// bar draws v as a share of peak in width cells.
func bar(v, peak float64, width int) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(v / peak * float64(width))
	return strings.Repeat("█", max(n, 1))
}
