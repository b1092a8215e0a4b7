package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	DefaultMethod    = http.MethodGet
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "pybuster/1.0.0"
	DefaultThreads   = 10
)

// ErrInvalidConfig marks every error produced while validating or loading
// the run configuration. Callers test for it with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// Options holds all configuration for a dirprobe run. It is built once
// from flags (and an optional config file) and is read-only afterwards.
type Options struct {
	// Target
	URL          string
	WordlistPath string // "-" = stdin
	Method       string

	// Matching
	StatusCode    int    // 0 = no status filter
	ExcludeStatus []int
	Extensions    string // raw comma-separated list as given on the command line
	ExtensionSet  []string
	ExcludeSize   []int

	// Request shaping
	AddSlash        bool
	FollowRedirects bool
	NoTLSValidation bool
	Headers         map[string]string
	Cookies         map[string]string
	Timeout         time.Duration
	UserAgent       string
	Proxy           string

	// Performance
	Threads int

	// Output
	Expanded    bool
	NoStatus    bool
	NoColor     bool
	Progress    bool
	Interactive bool
	Verbose     bool

	// Sources of configuration
	ConfigFile  string
	RequestFile string
}

// Defaults returns Options populated with the built-in defaults.
func Defaults() Options {
	return Options{
		Method:    DefaultMethod,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Threads:   DefaultThreads,
	}
}

// Validate normalizes the options in place and reports the first problem
// found. All returned errors are marked with ErrInvalidConfig.
func (o *Options) Validate() error {
	o.URL = strings.TrimSpace(o.URL)
	if o.URL == "" {
		return invalid("target URL is required (-u)")
	}
	if !strings.Contains(o.URL, "://") {
		o.URL = "http://" + o.URL
	}
	if o.WordlistPath == "" {
		return invalid("wordlist is required (-w)")
	}
	if o.Timeout <= 0 {
		return invalid("timeout must be positive, got %s", o.Timeout)
	}
	if o.Threads <= 0 {
		return invalid("threads must be positive, got %d", o.Threads)
	}
	if o.StatusCode != 0 && (o.StatusCode < 100 || o.StatusCode > 999) {
		return invalid("status code %d out of range", o.StatusCode)
	}
	if o.StatusCode != 0 && len(o.ExcludeStatus) > 0 {
		return invalid("--status-code and --exclude-status are mutually exclusive")
	}
	if o.WordlistPath == "-" && o.Interactive {
		return invalid("--interactive cannot be combined with a wordlist read from stdin")
	}

	if o.Method == "" {
		o.Method = DefaultMethod
	}
	o.Method = strings.ToUpper(o.Method)
	o.ExtensionSet = ParseExtensions(o.Extensions)
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfig)
}
