package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// Tracker renders a single overall progress bar for a batch of work items.
// It is safe for concurrent use.
type Tracker struct {
	bar   progress.Model
	out   io.Writer
	label string
	total int
	done  int
	mu    sync.Mutex
}

// New creates a Tracker that writes to out, labelling items with label
// (e.g. "links").
func New(out io.Writer, label string) *Tracker {
	return &Tracker{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		out:   out,
		label: label,
	}
}

// Update records done of total items finished and redraws the bar.
// Callbacks may arrive out of order, so the bar never moves backwards.
func (p *Tracker) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	if done > p.done {
		p.done = done
	}
	p.render()
}

// Finish ends the progress line.
func (p *Tracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		fmt.Fprintln(p.out)
	}
}

func (p *Tracker) percent() float64 {
	if p.total <= 0 {
		return 0
	}
	f := float64(p.done) / float64(p.total)
	if f > 1 {
		return 1
	}
	return f
}

func (p *Tracker) render() {
	if p.total <= 0 {
		return
	}
	fmt.Fprintf(p.out, "\rProgress: %s %d/%d %s", p.bar.ViewAs(p.percent()), p.done, p.total, p.label)
}
