package filter

import "github.com/maxvaer/dirprobe/internal/scanner"

// Filter decides whether an answered outcome should be suppressed.
type Filter interface {
	Name() string
	ShouldFilter(out *scanner.Outcome) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Apply runs every filter against the outcome. Returns true and the filter
// name if the outcome should be suppressed.
func (c *Chain) Apply(out *scanner.Outcome) (bool, string) {
	for _, f := range c.filters {
		if f.ShouldFilter(out) {
			return true, f.Name()
		}
	}
	return false, ""
}
