package filter

import (
	"strings"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/scanner"
)

// Finding is the classified, display-ready result of probing one word.
type Finding struct {
	Word     string
	URL      string
	FinalURL string // post-redirect URL, Success only
	Kind     scanner.OutcomeKind

	// HasStatus is false for network failures.
	Status    int
	HasStatus bool

	ContentLength     int64
	MatchedExtensions []string

	// Suppressed findings are counted but not printed.
	Suppressed bool
	Reason     string

	Message string // failure text for NetworkFailure and BodyReadFailure
}

// MatchedExtension returns the first matched extension, if any.
func (f *Finding) MatchedExtension() (string, bool) {
	if len(f.MatchedExtensions) == 0 {
		return "", false
	}
	return f.MatchedExtensions[0], true
}

// Classifier turns outcomes into findings.
type Classifier struct {
	chain      *Chain
	extensions []string
}

// NewClassifier builds the filter chain and extension list from opts.
// opts must already be validated.
func NewClassifier(opts *config.Options) *Classifier {
	chain := NewChain()
	if opts.StatusCode != 0 || len(opts.ExcludeStatus) > 0 {
		var include []int
		if opts.StatusCode != 0 {
			include = []int{opts.StatusCode}
		}
		chain.Add(NewStatusFilter(include, opts.ExcludeStatus))
	}
	if len(opts.ExcludeSize) > 0 {
		chain.Add(NewSizeFilter(opts.ExcludeSize))
	}
	exts := opts.ExtensionSet
	if exts == nil {
		exts = config.ParseExtensions(opts.Extensions)
	}
	return &Classifier{chain: chain, extensions: exts}
}

// Classify never fails. Network failures are always reported; answered
// outcomes go through the filter chain and, if they survive, extension
// matching against the raw Content-Type header.
func (c *Classifier) Classify(out *scanner.Outcome) Finding {
	f := Finding{
		Word:    out.Word,
		URL:     out.URL,
		Kind:    out.Kind,
		Message: out.Message(),
	}
	if !out.Answered() {
		return f
	}

	f.Status = out.StatusCode
	f.HasStatus = true

	if filtered, reason := c.chain.Apply(out); filtered {
		f.Suppressed = true
		f.Reason = reason
		return f
	}

	f.ContentLength = out.BodyLength
	if out.Kind == scanner.Success {
		f.FinalURL = out.FinalURL
	}
	f.MatchedExtensions = matchExtensions(out.ContentType(), c.extensions)
	return f
}

// matchExtensions returns every token that is a case-sensitive suffix of the
// raw Content-Type value. The header is not MIME-parsed, so a
// "; charset=..." parameter defeats the match.
func matchExtensions(contentType string, extensions []string) []string {
	var matched []string
	for _, ext := range extensions {
		if strings.HasSuffix(contentType, ext) {
			matched = append(matched, ext)
		}
	}
	return matched
}
