package scanner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/wordlist"
)

// fakeDoer answers every request with 200 after delay and records the peak
// number of concurrent calls.
type fakeDoer struct {
	delay   time.Duration
	current atomic.Int64
	peak    atomic.Int64
	calls   atomic.Int64
}

func (f *fakeDoer) Do(ctx context.Context, spec RequestSpec) Outcome {
	f.calls.Add(1)
	n := f.current.Add(1)
	defer f.current.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return Outcome{Kind: NetworkFailure, Word: spec.Word, URL: spec.URL, Err: ctx.Err()}
	}
	return Outcome{Kind: Success, Word: spec.Word, URL: spec.URL, StatusCode: 200}
}

func dispatchOpts(threads int) *config.Options {
	o := config.Defaults()
	o.URL = "http://test.local"
	o.Threads = threads
	return &o
}

// sourceOf writes one word per line, newline-terminated, so a trailing
// blank word survives.
func sourceOf(words ...string) *wordlist.Source {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte('\n')
	}
	return wordlist.NewSource(strings.NewReader(b.String()))
}

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestDispatchAllCardinality(t *testing.T) {
	words := numberedWords(250)
	doer := &fakeDoer{delay: time.Millisecond}
	d := NewDispatcher(doer, dispatchOpts(7))

	seen := make(map[string]int)
	n, err := d.DispatchAll(context.Background(), sourceOf(words...), func(o Outcome) {
		seen[o.Word]++
	})

	require.NoError(t, err)
	assert.Equal(t, len(words), n)
	assert.Len(t, seen, len(words))
	for _, w := range words {
		assert.Equal(t, 1, seen[w], "word %s", w)
	}
}

func TestDispatchAllRespectsCapacity(t *testing.T) {
	const capacity = 5
	doer := &fakeDoer{delay: 10 * time.Millisecond}

	var maxObserved atomic.Int64
	observer := func(active int) {
		for {
			m := maxObserved.Load()
			if int64(active) <= m || maxObserved.CompareAndSwap(m, int64(active)) {
				break
			}
		}
	}
	d := NewDispatcher(doer, dispatchOpts(capacity), WithSlotObserver(observer))
	assert.Equal(t, capacity, d.Capacity())

	n, err := d.DispatchAll(context.Background(), sourceOf(numberedWords(60)...), func(Outcome) {})
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	assert.LessOrEqual(t, doer.peak.Load(), int64(capacity))
	assert.LessOrEqual(t, maxObserved.Load(), int64(capacity))
	assert.Equal(t, int64(capacity), doer.peak.Load(), "enough work to saturate every slot")
}

func TestDispatcherDefaultCapacity(t *testing.T) {
	d := NewDispatcher(&fakeDoer{}, dispatchOpts(0))
	assert.Equal(t, config.DefaultThreads, d.Capacity())
}

func TestDispatchAllSerializesSink(t *testing.T) {
	d := NewDispatcher(&fakeDoer{delay: time.Millisecond}, dispatchOpts(10))

	var inSink, overlaps atomic.Int32
	_, err := d.DispatchAll(context.Background(), sourceOf(numberedWords(100)...), func(Outcome) {
		if inSink.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(100 * time.Microsecond)
		inSink.Add(-1)
	})
	require.NoError(t, err)
	assert.Zero(t, overlaps.Load())
}

func TestDispatchAllBuildsURLs(t *testing.T) {
	opts := dispatchOpts(3)
	opts.AddSlash = true
	d := NewDispatcher(&fakeDoer{}, opts)

	var urls []string
	_, err := d.DispatchAll(context.Background(), sourceOf("a", "b", ""), func(o Outcome) {
		urls = append(urls, o.URL)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"http://test.local/a/", "http://test.local/b/", "http://test.local//"}, urls)
}

func TestDispatchAllEmptySource(t *testing.T) {
	d := NewDispatcher(&fakeDoer{}, dispatchOpts(3))
	n, err := d.DispatchAll(context.Background(), sourceOf(), func(Outcome) {
		t.Fatal("sink must not be called")
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

type brokenReader struct{ sent bool }

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "one\ntwo\nthree\n"), nil
	}
	return 0, io.ErrClosedPipe
}

func TestDispatchAllSourceError(t *testing.T) {
	d := NewDispatcher(&fakeDoer{delay: 5 * time.Millisecond}, dispatchOpts(2))

	n, err := d.DispatchAll(context.Background(), wordlist.NewSource(&brokenReader{}), func(Outcome) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, 3, n, "words read before the fault are still drained")
}

func TestDispatchAllCancel(t *testing.T) {
	doer := &fakeDoer{delay: 20 * time.Millisecond}
	d := NewDispatcher(doer, dispatchOpts(4))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	delivered := 0
	n, err := d.DispatchAll(ctx, sourceOf(numberedWords(1000)...), func(Outcome) {
		mu.Lock()
		delivered++
		if delivered == 8 {
			cancel()
		}
		mu.Unlock()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, n, 1000)
	assert.Equal(t, int(doer.calls.Load()), n, "every dispatched word yields exactly one outcome")
}

func TestDispatchAllPaused(t *testing.T) {
	p := NewPauser()
	p.Toggle()
	doer := &fakeDoer{}
	d := NewDispatcher(doer, dispatchOpts(2), WithPauser(p))

	done := make(chan int, 1)
	go func() {
		n, _ := d.DispatchAll(context.Background(), sourceOf("a", "b"), func(Outcome) {})
		done <- n
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, doer.calls.Load(), "nothing is sent while paused")

	p.Toggle()
	select {
	case n := <-done:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not resume")
	}
}
