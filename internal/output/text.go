package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/filter"
	"github.com/maxvaer/dirprobe/internal/scanner"
	"github.com/maxvaer/dirprobe/pkg/version"
)

const rule = "==============================================================="

// TextWriter writes the line-oriented report. Each finding is rendered
// into a buffer first and written under a mutex, so concurrent callers
// never interleave partial lines.
type TextWriter struct {
	mu       sync.Mutex
	w        io.Writer
	noStatus bool
	expanded bool

	green, cyan, yellow, red, bold *color.Color
}

// NewTextWriter creates a text reporter writing to w.
func NewTextWriter(w io.Writer, opts *config.Options) *TextWriter {
	t := &TextWriter{
		w:        w,
		noStatus: opts.NoStatus,
		expanded: opts.Expanded,
		green:    color.New(color.FgGreen),
		cyan:     color.New(color.FgCyan),
		yellow:   color.New(color.FgYellow),
		red:      color.New(color.FgRed),
		bold:     color.New(color.Bold),
	}
	if opts.NoColor {
		for _, c := range []*color.Color{t.green, t.cyan, t.yellow, t.red, t.bold} {
			c.DisableColor()
		}
	}
	return t
}

func (t *TextWriter) WriteHeader(opts *config.Options) error {
	var b strings.Builder
	ver := version.Version
	if ver != "dev" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s %s\n", t.bold.Sprint("dirprobe"), ver)
	fmt.Fprintln(&b, "The Concurrent Directory Prober")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "[+] Url:         %s\n", opts.URL)
	fmt.Fprintf(&b, "[+] Method:      %s\n", opts.Method)
	fmt.Fprintf(&b, "[+] Threads:     %d\n", opts.Threads)
	fmt.Fprintf(&b, "[+] Wordlist:    %s\n", opts.WordlistPath)
	if opts.StatusCode != 0 {
		fmt.Fprintf(&b, "[+] Status code: %d\n", opts.StatusCode)
	}
	if len(opts.ExtensionSet) > 0 {
		fmt.Fprintf(&b, "[+] Extensions:  %s\n", strings.Join(opts.ExtensionSet, ","))
	}
	fmt.Fprintf(&b, "[+] User Agent:  %s\n", opts.UserAgent)
	fmt.Fprintf(&b, "[+] Timeout:     %s\n", opts.Timeout)
	if opts.FollowRedirects {
		fmt.Fprintln(&b, "[+] Follow redirects: true")
	}
	fmt.Fprintln(&b, rule)

	return t.write(b.String())
}

// WriteFinding prints nothing for suppressed findings.
func (t *TextWriter) WriteFinding(f *filter.Finding) error {
	if f.Suppressed {
		return nil
	}

	var b strings.Builder
	if f.Kind == scanner.NetworkFailure {
		fmt.Fprintf(&b, "Failed to send request: %s: %s\n", f.URL, f.Message)
		return t.write(b.String())
	}

	if f.Kind == scanner.BodyReadFailure {
		fmt.Fprintf(&b, "Failed to read response body: %s\n", f.Message)
	}
	if !t.noStatus {
		fmt.Fprintf(&b, "%s - %s\n", t.colorForStatus(f.Status).Sprint(f.Status), f.URL)
	}
	if t.expanded && f.Kind == scanner.Success {
		fmt.Fprintln(&b, f.FinalURL)
	}
	fmt.Fprintf(&b, "Content-Length: %d\n", f.ContentLength)
	for range f.MatchedExtensions {
		fmt.Fprintf(&b, "Found: %s\n", f.URL)
	}

	return t.write(b.String())
}

func (t *TextWriter) WriteFooter(s Summary) error {
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "dirprobe started at: %s\n", s.Start.Format(TimestampLayout))
	fmt.Fprintf(&b, "dirprobe finished at: %s\n", s.End.Format(TimestampLayout))
	fmt.Fprintln(&b, "Directory enumeration completed.")
	fmt.Fprintln(&b, rule)
	return t.write(b.String())
}

func (t *TextWriter) write(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.w, s)
	return err
}

func (t *TextWriter) colorForStatus(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return t.green
	case code >= 300 && code < 400:
		return t.cyan
	case code >= 400 && code < 500:
		return t.yellow
	default:
		return t.red
	}
}
