package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/runner"
)

// Scan executes the scan workflow: discover files, analyse them, store the
// annotations and print a summary to out. It returns the process exit code.
func Scan(ctx context.Context, config *Config, out io.Writer) (int, error) {
	startTime := time.Now()

	logger.Debug("discovering embedded SQL sources in %s", config.SearchPath)

	// Step 1: Discover files
	files, err := discovery.Discover(config.SearchPath, config.Patterns, config.Ignore)
	if err != nil {
		return 1, fmt.Errorf("failed to discover files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No embedded SQL files found (*.sqc, *.sqC, *.sqx)")
		return 0, nil
	}

	logger.Debug("Found %d file(s)", len(files))

	// Step 2: Analyse files
	runs := scanFiles(ctx, config, files, runner.Analyze)

	// Step 3: Collect and save annotations
	collector := annotation.NewCollector()
	collector.Annotations().Root = config.SearchPath
	runner.Collect(collector, runs)

	if err := annotation.SaveCollector(collector, config.AnnotationsFile); err != nil {
		return 1, fmt.Errorf("failed to save annotations: %w", err)
	}

	// Step 4: Display summary
	summary := runner.SummarizeRuns(runs)
	for _, run := range runs {
		if run.Status == runner.ScanFailed {
			logger.Error("%s: %v", run.File.RelativePath, run.Error)
		}
	}
	printSummary(out, summary, time.Since(startTime))
	fmt.Fprintf(out, "Annotations written to %s\n", config.AnnotationsFile)

	if ctx.Err() != nil {
		return 1, ctx.Err()
	}
	return summary.ExitCode(), nil
}

// scanFiles runs the worker pool over files with a progress bar on stderr.
func scanFiles(ctx context.Context, config *Config, files []discovery.DiscoveredFile, analyze runner.Analyzer) []*runner.ScanRun {
	progress := newProgressReporter(os.Stderr, len(files), "Scanning files", config.Verbose)
	defer progress.finish()

	pool := runner.NewWorkerPool(runner.NewExecutor(analyze, config.Verbose), config.Parallelism, config.Verbose)
	pool.OnFileDone = progress.onFileDone
	return pool.ExecuteParallel(ctx, files)
}

func printSummary(out io.Writer, s *runner.Summary, elapsed time.Duration) {
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Files:      %d scanned, %d failed, %d total\n", s.ScannedFiles, s.FailedFiles, s.TotalFiles)
	fmt.Fprintf(out, "Functions:  %d\n", s.Functions)
	fmt.Fprintf(out, "Host vars:  %d declared, %d SQL references, %d bare references\n",
		s.HostVariables, s.SQLReferences, s.BareReferences)
	fmt.Fprintf(out, "Statements: %d\n", s.SQLStatements)
	fmt.Fprintf(out, "Time:       %v\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "\n")
}
