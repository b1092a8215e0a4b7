package runner

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// startStdinToggle reads single keypresses from stdin and toggles a pauser
// on Enter or Space. Notices go to notify. The cleanup restores the
// terminal. If stdin is not a terminal it returns a nil pauser and a no-op
// cleanup.
func startStdinToggle(notify io.Writer) (pauser *scanner.Pauser, cleanup func()) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		zap.S().Debugw("interactive mode needs a terminal on stdin, ignoring")
		return nil, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		zap.S().Warnw("could not enable raw terminal", "error", err)
		return nil, func() {}
	}

	// MakeRaw disables OPOST which stops \n to \r\n translation.
	fixOutputProcessing(fd)

	pauser = scanner.NewPauser()
	cleanup = func() {
		_ = term.Restore(fd, oldState)
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			if !handleKey(buf[0], pauser, notify, func() {
				_ = term.Restore(fd, oldState)
				sendInterrupt()
			}) {
				return
			}
		}
	}()

	return pauser, cleanup
}

// handleKey applies one keypress. It reports false once the reader should
// stop.
func handleKey(key byte, pauser *scanner.Pauser, notify io.Writer, interrupt func()) bool {
	switch key {
	case 0x03: // Ctrl+C in raw mode; re-raise SIGINT for the signal context.
		interrupt()
		return false
	case '\r', '\n', ' ':
		if pauser.Toggle() {
			fmt.Fprint(notify, "\r\033[K[*] Probing paused, press Enter or Space to resume\n")
		} else {
			fmt.Fprintf(notify, "\r\033[K[*] Probing resumed (paused %s in total)\n", pauser.PausedDuration().Round(time.Millisecond))
		}
	}
	return true
}
