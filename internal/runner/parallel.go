package runner

import (
	"context"
	"sync"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
)

// WorkerPool manages parallel file scans
type WorkerPool struct {
	executor   *Executor
	maxWorkers int
	verbose    bool

	// OnFileDone, if set, is called once per file as its scan finishes.
	// Calls are serialized.
	OnFileDone func(*ScanRun)
}

// NewWorkerPool creates a new worker pool for parallel scans
func NewWorkerPool(executor *Executor, maxWorkers int, verbose bool) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		executor:   executor,
		maxWorkers: maxWorkers,
		verbose:    verbose,
	}
}

// ExecuteParallel scans files with the configured concurrency limit. Runs
// are returned in the order of files.
func (wp *WorkerPool) ExecuteParallel(ctx context.Context, files []discovery.DiscoveredFile) []*ScanRun {
	numFiles := len(files)
	if numFiles == 0 {
		return nil
	}

	// If only one worker or one file, fall back to sequential execution
	if wp.maxWorkers == 1 || numFiles == 1 {
		return wp.executor.ExecuteBatch(ctx, files, wp.OnFileDone)
	}

	workers := min(wp.maxWorkers, numFiles)
	if wp.verbose {
		logger.Debug("Starting parallel scan with %d workers for %d files", workers, numFiles)
	}

	jobs := make(chan *scanJob, numFiles)
	results := make(chan *scanResult, numFiles)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, jobs, results, &wg)
	}

	for i := range files {
		jobs <- &scanJob{
			file:  &files[i],
			index: i,
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	runs := make([]*ScanRun, numFiles)
	for result := range results {
		runs[result.index] = result.run
		if wp.verbose {
			logger.Debug("[%s] %s (worker %d)", result.run.Status, result.run.File.RelativePath, result.workerID)
		}
		if wp.OnFileDone != nil {
			wp.OnFileDone(result.run)
		}
	}

	return runs
}

// scanJob represents a single file to scan
type scanJob struct {
	file  *discovery.DiscoveredFile
	index int
}

// scanResult represents the result of a file scan
type scanResult struct {
	run      *ScanRun
	index    int
	workerID int
}

// worker is the goroutine that processes scan jobs
func (wp *WorkerPool) worker(ctx context.Context, workerID int, jobs <-chan *scanJob, results chan<- *scanResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		// Execute records a cancelled context as a failed run
		run, _ := wp.executor.Execute(ctx, job.file)
		results <- &scanResult{
			run:      run,
			index:    job.index,
			workerID: workerID,
		}
	}
}
