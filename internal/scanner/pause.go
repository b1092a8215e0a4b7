package scanner

import (
	"context"
	"sync"
	"time"
)

// Pauser is a pause/resume gate checked by the dispatcher before each word
// is sent. Requests already in flight are not interrupted.
type Pauser struct {
	mu          sync.Mutex
	resume      chan struct{} // non-nil while paused, closed on resume
	pausedSince time.Time
	totalPaused time.Duration
}

// NewPauser creates a Pauser in the running state.
func NewPauser() *Pauser {
	return &Pauser{}
}

// Wait blocks while paused. It returns ctx.Err() if ctx ends first.
func (p *Pauser) Wait(ctx context.Context) error {
	p.mu.Lock()
	ch := p.resume
	p.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Toggle flips between paused and running and returns true if now paused.
func (p *Pauser) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resume != nil {
		p.totalPaused += time.Since(p.pausedSince)
		close(p.resume)
		p.resume = nil
		return false
	}
	p.resume = make(chan struct{})
	p.pausedSince = time.Now()
	return true
}

// IsPaused reports whether the gate is closed.
func (p *Pauser) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resume != nil
}

// PausedDuration returns the total time spent paused, including any
// ongoing pause.
func (p *Pauser) PausedDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.totalPaused
	if p.resume != nil {
		d += time.Since(p.pausedSince)
	}
	return d
}
