// Package consoleprogress renders stage progress as terminal bars.
package consoleprogress

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/user/scribbler/pkg/ports"
)

// Progress draws one bar per stage. A new stage name finishes the previous bar.
type Progress struct {
	mu     sync.Mutex
	w      io.Writer
	labels map[string]string
	stage  string
	bar    *progressbar.ProgressBar
}

// Option configures a Progress.
type Option func(*Progress)

// WithLabels maps stage names to the text shown in front of the bar.
func WithLabels(labels map[string]string) Option {
	return func(p *Progress) {
		p.labels = labels
	}
}

// New creates a Progress writing to w.
func New(w io.Writer, opts ...Option) *Progress {
	p := &Progress{w: w}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewStderr returns bars on stderr when it is a terminal, and a no-op otherwise.
func NewStderr(opts ...Option) ports.Progress {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return Noop{}
	}
	return New(os.Stderr, opts...)
}

// Report updates the bar for stage.
func (p *Progress) Report(stage string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil || stage != p.stage {
		p.finishLocked()
		p.stage = stage
		p.bar = p.newBar(stage, total)
	}
	if total > 0 && int64(total) != p.bar.GetMax64() {
		p.bar.ChangeMax(total)
	}
	_ = p.bar.Set(done)
	if total > 0 && done >= total {
		p.finishLocked()
	}
}

// Close finishes any bar still on screen.
func (p *Progress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

func (p *Progress) finishLocked() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	_, _ = io.WriteString(p.w, "\n")
	p.bar = nil
	p.stage = ""
}

func (p *Progress) newBar(stage string, total int) *progressbar.ProgressBar {
	label := stage
	if l, ok := p.labels[stage]; ok {
		label = l
	}
	n := total
	if n <= 0 {
		n = -1
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Noop discards progress.
type Noop struct{}

// Report does nothing.
func (Noop) Report(string, int, int) {}

var (
	_ ports.Progress = (*Progress)(nil)
	_ ports.Progress = Noop{}
)
