package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ProgressReporter reports progress for multi-step commands.
type ProgressReporter interface {
	Start(total int)
	Step(label string)
	Finish()
}

// SimpleProgress implements a text progress bar that redraws one line.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int
	current int
	label   string
	writer  io.Writer
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{writer: w}
}

// NopProgress discards all progress.
type NopProgress struct{}

func (NopProgress) Start(int)   {}
func (NopProgress) Step(string) {}
func (NopProgress) Finish()     {}

// Start initializes the progress reporter with the total number of steps.
func (p *SimpleProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.label = ""
	p.render()
}

// Step marks one more step as done.
func (p *SimpleProgress) Step(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}
	p.label = label
	p.render()
}

// Finish completes the bar and ends the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	const barWidth = 30
	filled := barWidth * p.current / p.total
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)

	fmt.Fprintf(p.writer, "\r[%s] %d/%d %s", bar, p.current, p.total, p.label)
}
