package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/runner"
)

// progressReporter shows a file progress bar during batch scans.
type progressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// newProgressReporter creates a reporter writing to w; quiet disables it.
func newProgressReporter(w io.Writer, total int, description string, quiet bool) *progressReporter {
	p := &progressReporter{quiet: quiet || total < 2}
	if p.quiet {
		return p
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return p
}

// onFileDone advances the bar by one file.
func (p *progressReporter) onFileDone(*runner.ScanRun) {
	if p.quiet || p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// finish completes the bar even when files were skipped.
func (p *progressReporter) finish() {
	if p.quiet || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
