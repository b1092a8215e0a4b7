package scanner

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/maxvaer/dirprobe/internal/config"
)

// WordSource yields words one at a time. It is drained by a single
// goroutine.
type WordSource interface {
	Next() (string, bool)
	Err() error
}

// Dispatcher sends one request per word with at most capacity requests in
// flight at any instant.
type Dispatcher struct {
	doer     Doer
	opts     *config.Options
	capacity int
	sem      *semaphore.Weighted
	pauser   *Pauser
	observe  func(active int)
	active   atomic.Int64
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithPauser gates every new dispatch on p.
func WithPauser(p *Pauser) DispatcherOption {
	return func(d *Dispatcher) { d.pauser = p }
}

// WithSlotObserver registers fn to be called with the number of held slots
// after every acquire and release. fn runs on request goroutines and must be
// safe for concurrent use.
func WithSlotObserver(fn func(active int)) DispatcherOption {
	return func(d *Dispatcher) { d.observe = fn }
}

// NewDispatcher creates a Dispatcher whose capacity is opts.Threads
// (config.DefaultThreads when unset).
func NewDispatcher(doer Doer, opts *config.Options, options ...DispatcherOption) *Dispatcher {
	capacity := opts.Threads
	if capacity <= 0 {
		capacity = config.DefaultThreads
	}
	d := &Dispatcher{
		doer:     doer,
		opts:     opts,
		capacity: capacity,
		sem:      semaphore.NewWeighted(int64(capacity)),
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Capacity returns the maximum number of concurrent requests.
func (d *Dispatcher) Capacity() int {
	return d.capacity
}

// DispatchAll probes every word from src and hands each Outcome to sink.
// sink is only ever called from the calling goroutine, one Outcome at a
// time, in completion order. DispatchAll returns once every dispatched word
// has produced its Outcome, along with the number of Outcomes delivered.
//
// If ctx is cancelled no further words are dispatched; requests in flight
// are aborted and still delivered as NetworkFailure outcomes, and ctx.Err()
// is returned. A read fault from src stops dispatch the same way and is
// returned.
func (d *Dispatcher) DispatchAll(ctx context.Context, src WordSource, sink func(Outcome)) (int, error) {
	results := make(chan Outcome, d.capacity)
	var wg sync.WaitGroup
	var spawnErr error

	// Spawn loop: never more than capacity request goroutines exist.
	go func() {
		defer func() {
			wg.Wait()
			close(results)
		}()
		for {
			if err := ctx.Err(); err != nil {
				spawnErr = err
				return
			}
			if d.pauser != nil {
				if err := d.pauser.Wait(ctx); err != nil {
					spawnErr = err
					return
				}
			}
			word, ok := src.Next()
			if !ok {
				spawnErr = src.Err()
				return
			}
			if err := d.sem.Acquire(ctx, 1); err != nil {
				spawnErr = err
				return
			}
			d.acquired()

			wg.Add(1)
			go func(word string) {
				defer wg.Done()
				defer d.release()
				results <- d.doer.Do(ctx, BuildRequest(d.opts, word))
			}(word)
		}
	}()

	processed := 0
	for out := range results {
		sink(out)
		processed++
	}

	if spawnErr != nil {
		zap.S().Debugw("dispatch stopped early", "processed", processed, "error", spawnErr)
	}
	return processed, spawnErr
}

func (d *Dispatcher) acquired() {
	n := d.active.Add(1)
	if d.observe != nil {
		d.observe(int(n))
	}
}

// release decrements the active count before returning the slot so the
// observed count can never exceed capacity.
func (d *Dispatcher) release() {
	n := d.active.Add(-1)
	d.sem.Release(1)
	if d.observe != nil {
		d.observe(int(n))
	}
}
