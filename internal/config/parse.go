package config

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseExtensions splits a comma-separated extension list into trimmed,
// non-empty, de-duplicated tokens. Order and case are kept as given.
func ParseExtensions(raw string) []string {
	if raw == "" {
		return nil
	}
	var exts []string
	seen := make(map[string]struct{})
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	return exts
}

// ParseHeaders converts "Key: Value" strings into a header map with
// canonical keys.
func ParseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, errors.Mark(
				errors.Newf("invalid header format %q, expected 'Key: Value'", h),
				ErrInvalidConfig,
			)
		}
		headers[http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}

// ParseCookies converts a Cookie header value ("a=1; b=2") into a
// name to value map.
func ParseCookies(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid cookie string %q", raw), ErrInvalidConfig)
	}
	jar := make(map[string]string, len(cookies))
	for _, c := range cookies {
		jar[c.Name] = c.Value
	}
	return jar, nil
}
