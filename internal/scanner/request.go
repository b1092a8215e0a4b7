package scanner

import (
	"net/http"
	"time"

	"github.com/maxvaer/dirprobe/internal/config"
)

// RequestSpec is the fully resolved description of one outbound request.
type RequestSpec struct {
	Word               string
	Method             string
	URL                string
	Headers            map[string]string
	Cookies            map[string]string
	Timeout            time.Duration
	InsecureSkipVerify bool
	FollowRedirects    bool
}

// BuildRequest derives the request for word from the run options. It has no
// side effects and never fails; a malformed URL surfaces later as a
// NetworkFailure.
func BuildRequest(opts *config.Options, word string) RequestSpec {
	target := opts.URL + "/" + word
	if opts.AddSlash {
		target += "/"
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}
	// Canonical keys so an explicit -H user-agent replaces the default.
	for k, v := range opts.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}

	return RequestSpec{
		Word:               word,
		Method:             opts.Method,
		URL:                target,
		Headers:            headers,
		Cookies:            opts.Cookies,
		Timeout:            opts.Timeout,
		InsecureSkipVerify: opts.NoTLSValidation,
		FollowRedirects:    opts.FollowRedirects,
	}
}
