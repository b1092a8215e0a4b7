package runner

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/filter"
	"github.com/maxvaer/dirprobe/internal/output"
	"github.com/maxvaer/dirprobe/internal/scanner"
	"github.com/maxvaer/dirprobe/internal/wordlist"
)

// Run executes one probing run against opts.URL and writes the report to
// stdout.
func Run(ctx context.Context, opts *config.Options) error {
	_, err := RunTo(ctx, opts, os.Stdout)
	return err
}

// RunTo executes one probing run and writes the report to out. The
// returned Summary is filled even when the run ends with an error, as long
// as the wordlist could be opened.
//
// A wordlist that cannot be opened is reported as a configuration error
// before anything is written. A wordlist that fails mid-stream, or a
// cancelled ctx, stops dispatching; outcomes already in flight are still
// reported, then the footer is written and the error returned.
func RunTo(ctx context.Context, opts *config.Options, out io.Writer) (output.Summary, error) {
	var summary output.Summary

	// 1. Open the word source.
	src, err := wordlist.Open(opts.WordlistPath)
	if err != nil {
		return summary, errors.Mark(err, config.ErrInvalidConfig)
	}
	defer src.Close()

	// 2. Create the HTTP requester.
	req, err := scanner.NewRequester(opts)
	if err != nil {
		return summary, errors.Wrap(err, "creating requester")
	}

	// 3. Matching and reporting.
	classifier := filter.NewClassifier(opts)
	report := output.NewTextWriter(out, opts)
	progress := output.NewProgress(opts.Progress)

	var dispatchOpts []scanner.DispatcherOption
	if opts.Interactive {
		pauser, cleanup := startStdinToggle(os.Stderr)
		defer cleanup()
		if pauser != nil {
			dispatchOpts = append(dispatchOpts, scanner.WithPauser(pauser))
		}
	}
	dispatcher := scanner.NewDispatcher(req, opts, dispatchOpts...)

	// 4. Header, dispatch, footer.
	if err := report.WriteHeader(opts); err != nil {
		return summary, errors.Wrap(err, "writing header")
	}
	summary.Start = time.Now()

	var (
		suppressed int
		failures   int
		writeErr   error
	)
	n, dispatchErr := dispatcher.DispatchAll(ctx, src, func(o scanner.Outcome) {
		finding := classifier.Classify(&o)
		switch {
		case finding.Suppressed:
			suppressed++
		case finding.Kind == scanner.NetworkFailure:
			failures++
		}
		progress.Clear()
		if err := report.WriteFinding(&finding); err != nil && writeErr == nil {
			writeErr = err
		}
		progress.Increment()
	})

	summary.End = time.Now()
	summary.WordsProcessed = n
	progress.Stop()

	if err := report.WriteFooter(summary); err != nil && writeErr == nil {
		writeErr = err
	}

	zap.S().Debugw("run finished",
		"url", opts.URL,
		"words", n,
		"suppressed", suppressed,
		"network_failures", failures,
		"elapsed", summary.Elapsed(),
	)

	if dispatchErr != nil {
		return summary, dispatchErr
	}
	if writeErr != nil {
		return summary, errors.Wrap(writeErr, "writing report")
	}
	return summary, nil
}
