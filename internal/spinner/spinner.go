// Package spinner animates a single terminal line during long-running
// phases. The message can be swapped while it spins, so a run can narrate
// which model it is probing.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is an animated progress indicator bound to one writer.
type Spinner struct {
	w io.Writer

	mu    sync.Mutex
	msg   string
	width int // widest message seen, so shorter ones overwrite fully

	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start begins animating the spinner with the given message.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		msg:     message,
		width:   runewidth.StringWidth(message),
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.run()
	return s
}

// SetMessage swaps the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.msg = message
	if w := runewidth.StringWidth(message); w > s.width {
		s.width = w
	}
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.cleared
}

func (s *Spinner) run() {
	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+2)) //nolint:errcheck
			s.mu.Unlock()
			close(s.cleared)
			return
		case <-time.After(80 * time.Millisecond):
			s.mu.Lock()
			pad := s.width - runewidth.StringWidth(s.msg)
			fmt.Fprintf(s.w, "\r%s %s%s", frames[i%len(frames)], s.msg, strings.Repeat(" ", pad)) //nolint:errcheck
			s.mu.Unlock()
			i++
		}
	}
}
