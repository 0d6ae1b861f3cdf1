package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerRate = 80 * time.Millisecond

// Spinner animates a one-line status on stderr while a collect or render
// blocks. It stops on Stop or when its context ends.
type Spinner struct {
	msg string
	out io.Writer

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func newSpinner(ctx context.Context, msg string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		msg:     msg,
		out:     os.Stderr,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start launches the animation goroutine. Later calls do nothing.
func (s *Spinner) Start() {
	s.startOnce.Do(func() { go s.spin() })
}

func (s *Spinner) spin() {
	defer close(s.stopped)
	tick := time.NewTicker(spinnerRate)
	defer tick.Stop()

	label := StyleDim.Render(s.msg)
	for n := 0; ; n++ {
		select {
		case <-s.ctx.Done():
			return
		case <-tick.C:
			frame := styleIconSpinner.Render(spinnerFrames[n%len(spinnerFrames)])
			fmt.Fprintf(s.out, "\r%s %s", frame, label)
		}
	}
}

// Stop halts the animation and blanks the line. Safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		// A never-started spinner has no goroutine to close stopped.
		s.startOnce.Do(func() { close(s.stopped) })
		s.cancel()
		<-s.stopped
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.msg)+4))
	})
}
