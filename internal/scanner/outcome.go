package scanner

import "net/http"

// OutcomeKind tags which variant of Outcome is populated.
type OutcomeKind int

const (
	// Success: a response arrived and its body was read completely.
	Success OutcomeKind = iota
	// NetworkFailure: no response (refused, DNS, TLS, timeout, bad URL).
	NetworkFailure
	// BodyReadFailure: a response arrived but reading its body failed.
	BodyReadFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case NetworkFailure:
		return "network-failure"
	case BodyReadFailure:
		return "body-read-failure"
	default:
		return "unknown"
	}
}

// Outcome is the raw result of probing one word. Exactly one Outcome is
// produced per dispatched word.
type Outcome struct {
	Kind OutcomeKind
	Word string
	URL  string // requested URL

	// Set for Success and BodyReadFailure.
	StatusCode int
	Header     http.Header

	// Success only. BodyLength is 0 for BodyReadFailure.
	BodyLength int64
	FinalURL   string

	// NetworkFailure and BodyReadFailure.
	Err error
}

// Answered reports whether the server produced a response.
func (o *Outcome) Answered() bool {
	return o.Kind != NetworkFailure
}

// ContentType returns the raw Content-Type header value (case-insensitive
// key lookup), or "" when there is none.
func (o *Outcome) ContentType() string {
	if o.Header == nil {
		return ""
	}
	return o.Header.Get("Content-Type")
}

// Message returns the failure text, or "" for a Success.
func (o *Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
