package wordlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

const maxLineSize = 1024 * 1024

// Source streams words from a newline-delimited input one line at a time,
// so memory use does not depend on the size of the list. Lines are trimmed
// but blank lines are kept: they probe the base URL itself.
//
// A Source is not safe for concurrent use; a single goroutine drains it.
type Source struct {
	sc     *bufio.Scanner
	closer io.Closer
	word   string
	err    error
}

// Open opens the word list at path. "-" reads from standard input.
func Open(path string) (*Source, error) {
	if path == "-" {
		return NewSource(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening wordlist %s", path)
	}
	s := NewSource(f)
	s.closer = f
	return s, nil
}

// NewSource wraps r. The caller keeps ownership of r.
func NewSource(r io.Reader) *Source {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Source{sc: sc}
}

// Next advances to the next word. It returns false at end of input or on a
// read error; check Err afterwards.
func (s *Source) Next() (string, bool) {
	if s.err != nil {
		return "", false
	}
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			s.err = errors.Wrap(err, "reading wordlist")
		}
		return "", false
	}
	s.word = strings.TrimSpace(s.sc.Text())
	return s.word, true
}

// Err returns the first read error encountered, if any.
func (s *Source) Err() error {
	return s.err
}

// Close releases the underlying file when the Source was created by Open.
func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// ReadAll drains r into a slice. Used for small inputs and in tests.
func ReadAll(r io.Reader) ([]string, error) {
	s := NewSource(r)
	var words []string
	for {
		w, ok := s.Next()
		if !ok {
			break
		}
		words = append(words, w)
	}
	return words, s.Err()
}
