package runner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

func TestHandleKey(t *testing.T) {
	p := scanner.NewPauser()
	var notify bytes.Buffer
	interrupted := false
	interrupt := func() { interrupted = true }

	assert.True(t, handleKey('x', p, &notify, interrupt))
	assert.False(t, p.IsPaused())
	assert.Empty(t, notify.String())

	for _, key := range []byte{' ', '\r', '\n'} {
		notify.Reset()
		wasPaused := p.IsPaused()
		assert.True(t, handleKey(key, p, &notify, interrupt))
		assert.Equal(t, !wasPaused, p.IsPaused())
		if wasPaused {
			assert.Contains(t, notify.String(), "resumed")
		} else {
			assert.Contains(t, notify.String(), "paused")
		}
	}

	assert.False(t, handleKey(0x03, p, &notify, interrupt), "Ctrl+C stops the reader")
	assert.True(t, interrupted)
}
