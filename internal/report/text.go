package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
)

// TextReporter writes one compiler-style line per annotation:
//
//	path:line:col: kind name [function]
//
// Lines are ordered by path, then offset.
type TextReporter struct{}

// NewTextReporter creates a new text reporter
func NewTextReporter() *TextReporter {
	return &TextReporter{}
}

// Format writes annotations as text to the writer
func (r *TextReporter) Format(ann *annotation.Annotations, writer io.Writer) error {
	w := bufio.NewWriter(writer)
	for _, path := range ann.GetFiles() {
		for _, a := range ann.Files[path].Sorted() {
			if _, err := fmt.Fprintln(w, line(path, a)); err != nil {
				return fmt.Errorf("failed to write text output: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	return nil
}

func line(path string, a annotation.Annotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s", path, a.Line, a.Column, a.Kind)
	if a.Name != "" {
		b.WriteByte(' ')
		b.WriteString(a.Name)
	}
	fmt.Fprintf(&b, " [%s]", a.Function)
	return b.String()
}

// FormatString returns annotations as text
func (r *TextReporter) FormatString(ann *annotation.Annotations) (string, error) {
	var buf strings.Builder
	if err := r.Format(ann, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Name returns the name of this reporter
func (r *TextReporter) Name() string {
	return "text"
}
