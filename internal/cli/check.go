package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/check"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/database"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
)

// Check describes every extracted statement on the configured server and
// prints one line per rejected statement. It returns the process exit code.
func Check(ctx context.Context, config *Config, out io.Writer) (int, error) {
	files, err := discovery.Discover(config.SearchPath, config.Patterns, config.Ignore)
	if err != nil {
		return 1, fmt.Errorf("failed to discover files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No embedded SQL files found (*.sqc, *.sqC, *.sqx)")
		return 0, nil
	}

	pool, err := database.NewPool(ctx, config)
	if err != nil {
		return 1, err
	}
	defer pool.Close()

	target := pool
	if len(config.SchemaFiles) > 0 {
		scratch, err := database.CreateScratchDatabase(ctx, pool)
		if err != nil {
			return 1, err
		}
		defer func() {
			if err := database.DestroyScratchDatabase(context.WithoutCancel(ctx), pool, scratch); err != nil {
				logger.Warn("failed to drop scratch database %s: %v", scratch.Name(), err)
			}
		}()
		if err := scratch.ApplySchema(ctx, config.SchemaFiles); err != nil {
			return 1, err
		}
		logger.Debug("schema loaded into scratch database %s", scratch.Name())
		target = scratch
	}

	checker := check.NewChecker(target, config.Verbose)
	var all []check.Finding
	for i := range files {
		findings, err := checker.CheckFile(ctx, &files[i])
		all = append(all, findings...)
		if err != nil {
			return 1, err
		}
	}

	for _, f := range all {
		switch f.Status {
		case check.StatusRejected:
			fmt.Fprintf(out, "%v\n", f.Err)
		case check.StatusOK:
			logger.Debug("%s:%d:%d: %s ok (%d params, %d columns)", f.Path, f.Line, f.Column, f.Kind, len(f.Params), f.Columns)
		}
	}

	s := check.Summarize(all)
	fmt.Fprintf(out, "\nStatements: %d ok, %d rejected, %d skipped, %d total\n", s.OK, s.Rejected, s.Skipped, s.Total)
	return s.ExitCode(), nil
}
