package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
)

// JSONReporter formats annotations as JSON
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// Format formats annotations as JSON and writes to the writer
func (r *JSONReporter) Format(ann *annotation.Annotations, writer io.Writer) error {
	data, err := json.MarshalIndent(ann, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal annotations to JSON: %w", err)
	}

	if _, err = writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	_, err = writer.Write([]byte("\n"))
	return err
}

// FormatString returns annotations as a JSON string
func (r *JSONReporter) FormatString(ann *annotation.Annotations) (string, error) {
	data, err := json.MarshalIndent(ann, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal annotations to JSON: %w", err)
	}
	return string(data), nil
}

// FormatSummary formats per-file counts as JSON
func (r *JSONReporter) FormatSummary(ann *annotation.Annotations) (string, error) {
	type fileSummary struct {
		Functions int                     `json:"functions"`
		Counts    map[annotation.Kind]int `json:"counts"`
	}
	summary := struct {
		Version   string                  `json:"version"`
		Timestamp any                     `json:"timestamp"`
		Totals    map[annotation.Kind]int `json:"totals"`
		Files     map[string]fileSummary  `json:"files"`
	}{
		Version:   ann.Version,
		Timestamp: ann.Timestamp,
		Totals:    ann.Totals(),
		Files:     make(map[string]fileSummary, len(ann.Files)),
	}

	for path, f := range ann.Files {
		counts := make(map[annotation.Kind]int, len(annotation.Kinds))
		for _, k := range annotation.Kinds {
			counts[k] = f.Count(k)
		}
		summary.Files[path] = fileSummary{Functions: len(f.Functions), Counts: counts}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary to JSON: %w", err)
	}

	return string(data), nil
}

// Name returns the name of this reporter
func (r *JSONReporter) Name() string {
	return "json"
}
