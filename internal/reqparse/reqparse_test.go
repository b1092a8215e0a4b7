package reqparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BurpHTTP2(t *testing.T) {
	content := "GET /feedback?_rsc=gyais HTTP/2\r\n" +
		"Host: www.example.com\r\n" +
		"Cookie: session=abc123; token=xyz\r\n" +
		"User-Agent: Mozilla/5.0\r\n" +
		"Accept: */*\r\n" +
		"Accept-Encoding: gzip\r\n" +
		"\r\n"

	req, err := Parse(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://www.example.com", req.URL)
	assert.Equal(t, map[string]string{"session": "abc123", "token": "xyz"}, req.Cookies)
	assert.Equal(t, "Mozilla/5.0", req.UserAgent)
	assert.Equal(t, map[string]string{"Accept": "*/*"}, req.Headers)
}

func TestParse_KeepsDirectory(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/admin", "https://target.com"},
		{"/", "https://target.com"},
		{"/app/login.php?x=1", "https://target.com/app"},
		{"/app/api/", "https://target.com/app/api"},
		{"https://other.com/v1/users", "https://other.com/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			content := "POST " + tt.target + " HTTP/1.1\r\nHost: target.com\r\n\r\nbody=1"
			req, err := Parse(strings.NewReader(content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.URL)
			assert.Equal(t, "POST", req.Method)
		})
	}
}

func TestParse_HTTP11_Port80(t *testing.T) {
	req, err := Parse(strings.NewReader("GET / HTTP/1.1\r\nHost: target.com:80\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://target.com:80", req.URL)
	assert.Nil(t, req.Cookies)
}

func TestParse_Authorization(t *testing.T) {
	req, err := Parse(strings.NewReader("GET /admin HTTP/1.1\r\nHost: target.com\r\nAuthorization: Bearer mytoken\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer mytoken", req.Headers["Authorization"])
	assert.Empty(t, req.UserAgent)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"missing host": "GET / HTTP/1.1\r\nAccept: */*\r\n\r\n",
		"empty file":   "",
		"bad line":     "GARBAGE\r\n",
		"bad cookie":   "GET / HTTP/1.1\r\nHost: a\r\nCookie: =x\r\n\r\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(content))
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.txt")
	require.NoError(t, os.WriteFile(path, []byte("GET /x HTTP/1.1\r\nHost: h.local\r\n\r\n"), 0644))

	req, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://h.local", req.URL)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
