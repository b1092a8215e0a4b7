//go:build !windows

package runner

import (
	"os"
	"syscall"
)

// sendInterrupt raises SIGINT on ourselves.
func sendInterrupt() {
	_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
}
