//go:build windows

package runner

// fixOutputProcessing is a no-op; the Windows console keeps output
// processing in raw mode.
func fixOutputProcessing(fd int) {}
