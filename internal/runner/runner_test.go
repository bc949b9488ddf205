package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/runner"
)

const program = `void f%d(void) {
    EXEC SQL BEGIN DECLARE SECTION;
    int v;
    EXEC SQL END DECLARE SECTION;
    EXEC SQL SELECT 1 INTO :v FROM t;
    v++;
}
`

// writeFiles creates n scannable files and discovers them.
func writeFiles(t *testing.T, n int) []discovery.DiscoveredFile {
	t.Helper()
	root := t.TempDir()
	for i := 0; i < n; i++ {
		path := filepath.Join(root, fmt.Sprintf("f%02d.sqc", i))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(program, i)), 0644))
	}
	files, err := discovery.Discover(root, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, n)
	return files
}

func TestExecutor_Execute(t *testing.T) {
	files := writeFiles(t, 1)
	exec := runner.NewExecutor(nil, false)

	run, err := exec.Execute(context.Background(), &files[0])
	require.NoError(t, err)
	assert.Equal(t, runner.ScanDone, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, "f00.sqc", run.Result.Path)
	assert.Equal(t, "c", run.Result.Language)
	assert.Equal(t, 1, run.Result.Count(annotation.KindDeclaration))
	assert.Equal(t, 1, run.Result.Count(annotation.KindSQLReference))
	assert.Equal(t, 1, run.Result.Count(annotation.KindBareReference))
	assert.False(t, run.EndTime.IsZero())
}

func TestExecutor_MissingFile(t *testing.T) {
	file := discovery.DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.sqc"), RelativePath: "gone.sqc"}

	run, err := runner.NewExecutor(nil, false).Execute(context.Background(), &file)
	require.Error(t, err)
	assert.Equal(t, runner.ScanFailed, run.Status)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, run.Result)
}

func TestExecutor_Cancelled(t *testing.T) {
	files := writeFiles(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := runner.NewExecutor(nil, false).Execute(ctx, &files[0])
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, runner.ScanFailed, run.Status)
}

func TestWorkerPool_KeepsOrder(t *testing.T) {
	files := writeFiles(t, 12)

	for _, workers := range []int{1, 3, 8, 32} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var done atomic.Int32
			pool := runner.NewWorkerPool(runner.NewExecutor(nil, false), workers, false)
			pool.OnFileDone = func(*runner.ScanRun) { done.Add(1) }

			runs := pool.ExecuteParallel(context.Background(), files)
			require.Len(t, runs, len(files))
			for i, run := range runs {
				require.NotNil(t, run)
				assert.Equal(t, files[i].RelativePath, run.File.RelativePath)
				assert.Equal(t, runner.ScanDone, run.Status)
				assert.Equal(t, fmt.Sprintf("f%d", i), run.Result.Functions[0].Name)
			}
			assert.EqualValues(t, len(files), done.Load())
		})
	}
}

func TestWorkerPool_Empty(t *testing.T) {
	pool := runner.NewWorkerPool(runner.NewExecutor(nil, false), 4, false)
	assert.Nil(t, pool.ExecuteParallel(context.Background(), nil))
}

func TestWorkerPool_CustomAnalyzer(t *testing.T) {
	files := writeFiles(t, 5)
	var calls atomic.Int32
	analyze := func(f *discovery.DiscoveredFile, text string) *annotation.FileAnnotations {
		calls.Add(1)
		return runner.Analyze(f, text)
	}

	runs := runner.NewWorkerPool(runner.NewExecutor(analyze, false), 2, false).ExecuteParallel(context.Background(), files)
	assert.Len(t, runs, 5)
	assert.EqualValues(t, 5, calls.Load())
}

func TestSummarizeRuns(t *testing.T) {
	files := writeFiles(t, 3)
	files = append(files, discovery.DiscoveredFile{Path: filepath.Join(t.TempDir(), "missing.sqc"), RelativePath: "missing.sqc"})

	runs := runner.NewWorkerPool(runner.NewExecutor(nil, false), 2, false).ExecuteParallel(context.Background(), files)
	summary := runner.SummarizeRuns(runs)

	assert.Equal(t, 4, summary.TotalFiles)
	assert.Equal(t, 3, summary.ScannedFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 3, summary.Functions)
	assert.Equal(t, 3, summary.HostVariables)
	assert.Equal(t, 3, summary.SQLStatements)
	assert.Equal(t, 3, summary.SQLReferences)
	assert.Equal(t, 3, summary.BareReferences)
	assert.False(t, summary.AllScanned())
	assert.Equal(t, 1, summary.ExitCode())

	collector := annotation.NewCollector()
	runner.Collect(collector, runs)
	assert.Len(t, collector.GetFileList(), 3)
}

func TestScanStatus_String(t *testing.T) {
	assert.Equal(t, "pending", runner.ScanPending.String())
	assert.Equal(t, "running", runner.ScanRunning.String())
	assert.Equal(t, "done", runner.ScanDone.String())
	assert.Equal(t, "failed", runner.ScanFailed.String())
	assert.Equal(t, "unknown", runner.ScanStatus(42).String())
}
