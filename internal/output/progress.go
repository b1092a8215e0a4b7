package output

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Progress shows a spinner with the number of processed words on stderr.
// The word count is unknown up front because the list is streamed. A
// disabled Progress is a no-op.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress returns an enabled Progress only when enabled is set and
// stderr is a terminal.
func NewProgress(enabled bool) *Progress {
	if !enabled || !term.IsTerminal(int(os.Stderr.Fd())) {
		return &Progress{}
	}
	return newProgressTo(os.Stderr)
}

func newProgressTo(w io.Writer) *Progress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("probing"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("req"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

// Increment records one processed word.
func (p *Progress) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Clear erases the spinner line so a finding can be printed cleanly. The
// next Increment redraws it.
func (p *Progress) Clear() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Clear()
}

// Stop ends the display.
func (p *Progress) Stop() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// Count returns the number of processed words shown so far.
func (p *Progress) Count() int64 {
	if p.bar == nil {
		return 0
	}
	return int64(p.bar.State().CurrentNum)
}
