package filter

import "github.com/maxvaer/dirprobe/internal/scanner"

// SizeFilter suppresses outcomes with specific body lengths.
type SizeFilter struct {
	sizes map[int64]struct{}
}

// NewSizeFilter creates a filter that drops outcomes with the given body sizes.
func NewSizeFilter(excludeSizes []int) *SizeFilter {
	f := &SizeFilter{sizes: make(map[int64]struct{}, len(excludeSizes))}
	for _, s := range excludeSizes {
		f.sizes[int64(s)] = struct{}{}
	}
	return f
}

func (f *SizeFilter) Name() string { return "size" }

func (f *SizeFilter) ShouldFilter(out *scanner.Outcome) bool {
	_, ok := f.sizes[out.BodyLength]
	return ok
}
