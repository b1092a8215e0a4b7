package reqparse

import (
	"bufio"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParsedRequest holds what dirprobe takes from a raw HTTP request file.
type ParsedRequest struct {
	Method    string
	URL       string // scheme://host plus the directory of the request path
	UserAgent string
	Headers   map[string]string // without Host, Cookie, User-Agent and body/encoding headers
	Cookies   map[string]string
}

// skipped headers either describe the original body or are set per request.
var skipped = map[string]struct{}{
	"Host":            {},
	"Content-Length":  {},
	"Accept-Encoding": {},
	"Connection":      {},
	"Cookie":          {},
	"User-Agent":      {},
}

// ParseFile reads a raw HTTP request (e.g. a Burp Suite export).
func ParseFile(p string) (*ParsedRequest, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "opening request file")
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the request line and headers from r. The body is ignored.
func Parse(r io.Reader) (*ParsedRequest, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024) // large cookies

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "reading request file")
		}
		return nil, errors.New("request file is empty")
	}
	requestLine := strings.TrimSpace(sc.Text())
	parts := strings.Fields(requestLine)
	if len(parts) < 2 {
		return nil, errors.Newf("invalid request line: %q", requestLine)
	}
	method, target := parts[0], parts[1]
	proto := ""
	if len(parts) >= 3 {
		proto = strings.ToUpper(parts[2])
	}

	raw := make(http.Header)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		raw.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading request file")
	}

	base, err := baseURL(target, raw.Get("Host"), proto)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedRequest{
		Method:    method,
		URL:       base,
		UserAgent: raw.Get("User-Agent"),
		Headers:   make(map[string]string),
	}
	for key := range raw {
		if _, skip := skipped[key]; skip {
			continue
		}
		parsed.Headers[key] = raw.Get(key)
	}
	if c := raw.Get("Cookie"); c != "" {
		cookies, err := http.ParseCookie(c)
		if err != nil {
			return nil, errors.Wrap(err, "parsing Cookie header")
		}
		parsed.Cookies = make(map[string]string, len(cookies))
		for _, ck := range cookies {
			parsed.Cookies[ck.Name] = ck.Value
		}
	}
	return parsed, nil
}

// baseURL rebuilds scheme://host and keeps the directory part of the
// request path so probes land next to the captured resource.
func baseURL(target, host, proto string) (string, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", errors.Wrap(err, "invalid URL in request line")
		}
		return u.Scheme + "://" + u.Host + dir(u.Path), nil
	}

	if host == "" {
		return "", errors.New("request file missing Host header")
	}

	// Burp exports are mostly TLS; only an explicit :80 on HTTP/1.x means
	// plain http.
	scheme := "https"
	if strings.HasPrefix(proto, "HTTP/1") && strings.HasSuffix(host, ":80") {
		scheme = "http"
	}

	p := target
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return scheme + "://" + host + dir(p), nil
}

func dir(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasSuffix(p, "/") {
		p = path.Dir(p)
	}
	return strings.TrimRight(p, "/")
}
