package config

import (
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/configor"
)

// File is the on-disk (YAML) and environment form of the tunable options.
// Values only apply to flags that were not set on the command line.
type File struct {
	Method          string            `yaml:"method" default:"GET" env:"DIRPROBE_METHOD"`
	Threads         int               `yaml:"threads" default:"10" env:"DIRPROBE_THREADS"`
	Timeout         float64           `yaml:"timeout" default:"10" env:"DIRPROBE_TIMEOUT"` // seconds
	UserAgent       string            `yaml:"user_agent" default:"pybuster/1.0.0" env:"DIRPROBE_USER_AGENT"`
	FollowRedirects bool              `yaml:"follow_redirects" env:"DIRPROBE_FOLLOW_REDIRECTS"`
	NoTLSValidation bool              `yaml:"no_tls_validation" env:"DIRPROBE_NO_TLS_VALIDATION"`
	AddSlash        bool              `yaml:"add_slash" env:"DIRPROBE_ADD_SLASH"`
	Extensions      string            `yaml:"extensions" env:"DIRPROBE_EXTENSIONS"`
	Cookies         string            `yaml:"cookies" env:"DIRPROBE_COOKIES"`
	Headers         map[string]string `yaml:"headers"`
}

// LoadFile reads path (if non-empty) and DIRPROBE_* environment variables.
func LoadFile(path string) (*File, error) {
	f := &File{}
	var files []string
	if path != "" {
		// configor silently skips missing files.
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "loading config file %q", path), ErrInvalidConfig)
		}
		files = append(files, path)
	}
	err := configor.New(&configor.Config{
		ENVPrefix:  "DIRPROBE",
		Debug:      false,
		Verbose:    false,
		Silent:     true,
		AutoReload: false,
	}).Load(f, files...)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "loading config file %q", path), ErrInvalidConfig)
	}
	return f, nil
}

// Apply copies file values into o for every option whose flag was not
// explicitly set. changed reports whether a flag (by long name) was set.
func (f *File) Apply(o *Options, changed func(flag string) bool) error {
	if !changed("method") && f.Method != "" {
		o.Method = f.Method
	}
	if !changed("threads") && f.Threads != 0 {
		o.Threads = f.Threads
	}
	if !changed("timeout") && f.Timeout != 0 {
		o.Timeout = time.Duration(f.Timeout * float64(time.Second))
	}
	if !changed("useragent") && f.UserAgent != "" {
		o.UserAgent = f.UserAgent
	}
	if !changed("follow-redirect") && f.FollowRedirects {
		o.FollowRedirects = true
	}
	if !changed("no-tls-validation") && f.NoTLSValidation {
		o.NoTLSValidation = true
	}
	if !changed("add-slash") && f.AddSlash {
		o.AddSlash = true
	}
	if !changed("extensions") && f.Extensions != "" {
		o.Extensions = f.Extensions
	}
	if !changed("cookies") && f.Cookies != "" {
		cookies, err := ParseCookies(f.Cookies)
		if err != nil {
			return err
		}
		o.Cookies = cookies
	}
	if len(f.Headers) > 0 {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(f.Headers))
		}
		// Explicit -H values take precedence.
		for k, v := range f.Headers {
			k = http.CanonicalHeaderKey(k)
			if _, exists := o.Headers[k]; !exists {
				o.Headers[k] = v
			}
		}
	}
	return nil
}
