package report

import (
	"fmt"
	"io"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
)

// Formatter is an interface for annotation report formatters
type Formatter interface {
	// Format formats annotations and writes to the writer
	Format(ann *annotation.Annotations, writer io.Writer) error

	// FormatString returns annotations as a string
	FormatString(ann *annotation.Annotations) (string, error)

	// Name returns the name of this formatter
	Name() string
}

// FormatType represents supported report formats
type FormatType string

const (
	FormatJSON FormatType = "json"
	FormatText FormatType = "text"
	FormatHTML FormatType = "html"
)

// GetFormatter returns a formatter for the specified format type. sourceRoot
// is where annotated paths are resolved when a format needs the source text.
func GetFormatter(format FormatType, sourceRoot string) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONReporter(), nil
	case FormatText:
		return NewTextReporter(), nil
	case FormatHTML:
		return NewHTMLReporter(sourceRoot), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, text, html)", format)
	}
}

// FormatToWriter formats annotations to a writer using the specified format
func FormatToWriter(ann *annotation.Annotations, format FormatType, sourceRoot string, writer io.Writer) error {
	formatter, err := GetFormatter(format, sourceRoot)
	if err != nil {
		return err
	}
	return formatter.Format(ann, writer)
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatJSON, FormatText, FormatHTML:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatText), string(FormatHTML)}
}
