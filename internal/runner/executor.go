package runner

import (
	"context"
	"os"
	"time"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/errors"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/hostvar"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
)

// Analyzer turns the text of one file into annotations. The default reads
// nothing but text, so a cache can sit in front of it.
type Analyzer func(file *discovery.DiscoveredFile, text string) *annotation.FileAnnotations

// Analyze is the default Analyzer.
func Analyze(file *discovery.DiscoveredFile, text string) *annotation.FileAnnotations {
	return annotation.FromAnalyses(file.RelativePath, file.Language.String(), text, hostvar.AnalyzeDocument(text))
}

// Executor scans single files
type Executor struct {
	analyze Analyzer
	verbose bool
}

// NewExecutor creates a new executor. A nil analyzer selects Analyze.
func NewExecutor(analyze Analyzer, verbose bool) *Executor {
	if analyze == nil {
		analyze = Analyze
	}
	return &Executor{
		analyze: analyze,
		verbose: verbose,
	}
}

// Execute reads and analyses one file. The returned error is also stored in
// the run.
func (e *Executor) Execute(ctx context.Context, file *discovery.DiscoveredFile) (*ScanRun, error) {
	run := &ScanRun{
		File:      file,
		StartTime: time.Now(),
		Status:    ScanRunning,
	}
	defer func() { run.EndTime = time.Now() }()

	if err := ctx.Err(); err != nil {
		run.Status = ScanFailed
		run.Error = err
		return run, err
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		run.Status = ScanFailed
		run.Error = errors.NewFileError(file.Path, "read", err)
		if e.verbose {
			logger.Error("%v", run.Error)
		}
		return run, run.Error
	}

	run.Result = e.analyze(file, string(data))
	run.Status = ScanDone
	if e.verbose {
		logger.Debug("%s: %d functions, %d annotations", file.RelativePath, len(run.Result.Functions), len(run.Result.Annotations))
	}
	return run, nil
}

// ExecuteBatch scans files sequentially
func (e *Executor) ExecuteBatch(ctx context.Context, files []discovery.DiscoveredFile, onDone func(*ScanRun)) []*ScanRun {
	runs := make([]*ScanRun, 0, len(files))

	for i := range files {
		// A failed file is recorded; the batch carries on
		run, _ := e.Execute(ctx, &files[i])
		runs = append(runs, run)
		if onDone != nil {
			onDone(run)
		}
	}

	return runs
}

// SummarizeRuns creates a summary of scan results
func SummarizeRuns(runs []*ScanRun) *Summary {
	summary := &Summary{
		TotalFiles: len(runs),
	}

	for _, run := range runs {
		if run == nil {
			continue
		}
		summary.TotalDuration += run.Duration()

		switch run.Status {
		case ScanDone:
			summary.ScannedFiles++
		case ScanFailed:
			summary.FailedFiles++
		}

		if run.Result == nil {
			continue
		}
		summary.Functions += len(run.Result.Functions)
		summary.HostVariables += run.Result.Count(annotation.KindDeclaration)
		summary.SQLStatements += run.Result.Count(annotation.KindSQLStatement)
		summary.SQLReferences += run.Result.Count(annotation.KindSQLReference)
		summary.BareReferences += run.Result.Count(annotation.KindBareReference)
	}

	return summary
}

// Collect adds the result of every successful run to collector.
func Collect(collector *annotation.Collector, runs []*ScanRun) {
	for _, run := range runs {
		if run != nil && run.Status == ScanDone {
			collector.Add(run.Result)
		}
	}
}
