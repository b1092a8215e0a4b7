package output

import (
	"time"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/filter"
)

// TimestampLayout is used for the run start/end lines.
const TimestampLayout = "2006-01-02 15:04:05"

// Summary holds the aggregate facts of one run.
type Summary struct {
	Start          time.Time
	End            time.Time
	WordsProcessed int
}

// Reporter consumes findings. Implementations must keep every finding's
// lines contiguous in the output.
type Reporter interface {
	WriteHeader(opts *config.Options) error
	WriteFinding(f *filter.Finding) error
	WriteFooter(s Summary) error
}

// Elapsed returns the wall-clock duration of the run.
func (s Summary) Elapsed() time.Duration {
	return s.End.Sub(s.Start)
}
