package scanner

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/maxvaer/dirprobe/internal/config"
)

const maxRedirects = 10

// Doer performs one request and always yields an Outcome.
type Doer interface {
	Do(ctx context.Context, spec RequestSpec) Outcome
}

type followKey struct{}

// Requester wraps the run's shared, connection-pooled HTTP client.
type Requester struct {
	client *http.Client
}

// NewRequester creates a Requester from the provided options. The client is
// scoped to one run and safe for concurrent use.
func NewRequester(opts *config.Options) (*Requester, error) {
	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.NoTLSValidation},
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConnsPerHost: opts.Threads,
		MaxIdleConns:        opts.Threads,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "invalid proxy URL %q", opts.Proxy), config.ErrInvalidConfig)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			follow, _ := req.Context().Value(followKey{}).(bool)
			if !follow {
				return http.ErrUseLastResponse
			}
			if len(via) >= maxRedirects {
				return errors.Newf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &Requester{client: client}, nil
}

// Do sends the request described by spec and classifies what happened into
// an Outcome. It never returns an error value: every fault is folded into
// the Outcome. A body read that ends in a timeout or cancellation is a
// NetworkFailure, not a BodyReadFailure, so no status is reported for it.
func (r *Requester) Do(ctx context.Context, spec RequestSpec) Outcome {
	out := Outcome{Word: spec.Word, URL: spec.URL}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}
	ctx = context.WithValue(ctx, followKey{}, spec.FollowRedirects)

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, nil)
	if err != nil {
		out.Kind = NetworkFailure
		out.Err = errors.Wrap(err, "building request")
		return out
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	for _, name := range sortedKeys(spec.Cookies) {
		req.AddCookie(&http.Cookie{Name: name, Value: spec.Cookies[name]})
	}

	resp, err := r.client.Do(req)
	if err != nil {
		out.Kind = NetworkFailure
		out.Err = err
		zap.S().Debugw("request failed", "url", spec.URL, "error", err)
		return out
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		// A timeout or cancellation anywhere in the cycle counts as no answer.
		if isTimeout(err) || errors.Is(err, context.Canceled) {
			out.Kind = NetworkFailure
		} else {
			out.Kind = BodyReadFailure
			out.StatusCode = resp.StatusCode
			out.Header = resp.Header
		}
		out.Err = errors.Wrapf(err, "reading response body for %s", spec.URL)
		zap.S().Debugw("body read failed", "url", spec.URL, "status", resp.StatusCode, "error", err)
		return out
	}

	out.Kind = Success
	out.StatusCode = resp.StatusCode
	out.Header = resp.Header
	out.BodyLength = n
	out.FinalURL = resp.Request.URL.String()

	zap.S().Debugw("response received",
		"url", spec.URL,
		"status", resp.StatusCode,
		"bytes", n,
		"content_type", resp.Header.Get("Content-Type"),
	)
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
