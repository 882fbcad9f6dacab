package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner is the CLI busy indicator. It animates on w (normally stderr) while a
// search is in flight and satisfies search.Indicator.
type Spinner struct {
	w    io.Writer
	mu   sync.Mutex
	msg  string
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a new Spinner (not yet running).
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w}
}

// Start begins the animation with the given message. Starting a running
// spinner only replaces its message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.done)
}

// Update changes the spinner message while it's running.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Busy reports whether the spinner is running.
func (s *Spinner) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Stop halts the spinner and clears the line. Stopping an idle spinner is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done == nil {
		return
	}

	close(done)
	s.wg.Wait()
	fmt.Fprintf(s.w, "\r\033[K")
}

func (s *Spinner) run(done <-chan struct{}) {
	defer s.wg.Done()
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r\033[K%c %s", frames[i%len(frames)], msg)
			i++
		}
	}
}
