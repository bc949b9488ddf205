package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/report"
)

// Report generates a report from saved annotation data
func Report(annotationsFile, format, outputPath string) error {
	// Step 1: Load annotations
	store := annotation.NewStore(annotationsFile)
	if !store.Exists() {
		return fmt.Errorf("annotations file not found: %s (run 'esqlscan scan' first)", annotationsFile)
	}

	ann, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load annotations: %w", err)
	}

	// Step 2: Validate format
	if !report.ValidFormat(format) {
		return fmt.Errorf("unsupported format: %s (supported: %v)", format, report.SupportedFormats())
	}

	// Step 3: Get formatter
	formatter, err := report.GetFormatter(report.FormatType(format), ann.Root)
	if err != nil {
		return err
	}

	// Step 4: Format and output
	var writer io.Writer = os.Stdout
	if outputPath != "-" && outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	if err := formatter.Format(ann, writer); err != nil {
		return fmt.Errorf("failed to format annotations: %w", err)
	}

	// Print success message to stderr (so it doesn't interfere with stdout output)
	if outputPath != "-" && outputPath != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", outputPath)
	}

	return nil
}
