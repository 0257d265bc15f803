package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates on stderr while a long-running solver is busy. When
// stderr is not a terminal it logs the message once instead.
type Spinner struct {
	mu       sync.Mutex
	active   bool
	message  string
	started  time.Time
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message:  message,
		interval: 100 * time.Millisecond,
	}
}

// Interactive reports whether stderr is attached to a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.started = time.Now()
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	if !Interactive() {
		Progress(s.message)
		close(s.done)
		return
	}

	frameColor := color.New(color.FgCyan)
	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			msg := s.message
			elapsed := time.Since(s.started).Truncate(time.Second)
			s.mu.Unlock()
			fmt.Fprintf(os.Stderr, "\r%s %s (%s)", frameColor.Sprint(spinnerFrames[i%len(spinnerFrames)]), msg, elapsed)

			select {
			case <-stop:
				fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(msg)+24))
				return
			case <-ticker.C:
			}
		}
	}(s.stopChan, s.done)
}

// Stop stops the spinner and waits for the line to be cleared
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

// UpdateMessage updates the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// WithSpinner runs fn with a spinner and reports its outcome
func WithSpinner(message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.Start()

	err := fn()
	spinner.Stop()

	if err != nil {
		Errorf("%s failed: %v", message, err)
	} else {
		Successf("%s completed in %s", message, time.Since(spinner.started).Truncate(time.Millisecond))
	}
	return err
}
