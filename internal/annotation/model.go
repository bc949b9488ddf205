package annotation

import (
	"slices"
	"strings"
	"time"
)

// Version is the schema version written to annotation files.
const Version = "1.0"

// Kind is the flavor of an annotation.
type Kind string

const (
	KindDeclaration   Kind = "declaration"    // host variable declared in a declare section
	KindSQLReference  Kind = "sql-reference"  // :name inside an EXEC SQL statement
	KindBareReference Kind = "bare-reference" // name used in ordinary code
	KindSQLStatement  Kind = "sql-statement"  // a whole EXEC SQL statement
)

// Kinds lists every kind in presentation order.
var Kinds = []Kind{KindDeclaration, KindSQLReference, KindBareReference, KindSQLStatement}

// Annotation is one decorated byte range of a source file.
// Offset and Length are byte based; Line and Column are 1-based.
type Annotation struct {
	Kind     Kind   `json:"kind"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Name     string `json:"name,omitempty"`
	Function string `json:"function"`
	Label    string `json:"label"` // hover text
}

// End returns the offset one past the annotated range.
func (a Annotation) End() int { return a.Offset + a.Length }

// FunctionSummary describes one function scope of a file.
type FunctionSummary struct {
	Name          string `json:"name"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
	BodyStart     int    `json:"bodyStart"`
	BodyEnd       int    `json:"bodyEnd"`
	Line          int    `json:"line"`
	HostVariables int    `json:"hostVariables"`
}

// FileAnnotations holds every annotation of a single file, sorted by offset.
type FileAnnotations struct {
	Path        string            `json:"path"`
	Language    string            `json:"language"`
	Functions   []FunctionSummary `json:"functions"`
	Annotations []Annotation      `json:"annotations"`
}

// NewFileAnnotations creates an empty FileAnnotations
func NewFileAnnotations(path, language string) *FileAnnotations {
	return &FileAnnotations{
		Path:        path,
		Language:    language,
		Functions:   []FunctionSummary{},
		Annotations: []Annotation{},
	}
}

// Count returns the number of annotations of kind k.
func (f *FileAnnotations) Count(k Kind) int {
	n := 0
	for _, a := range f.Annotations {
		if a.Kind == k {
			n++
		}
	}
	return n
}

// Sort orders annotations by offset, then by kind order, then by length.
func (f *FileAnnotations) Sort() {
	slices.SortStableFunc(f.Annotations, compareAnnotations)
}

// Sorted returns the annotations in Sort order without modifying f.
func (f *FileAnnotations) Sorted() []Annotation {
	out := slices.Clone(f.Annotations)
	slices.SortStableFunc(out, compareAnnotations)
	return out
}

func compareAnnotations(a, b Annotation) int {
	if a.Offset != b.Offset {
		return a.Offset - b.Offset
	}
	if ka, kb := slices.Index(Kinds, a.Kind), slices.Index(Kinds, b.Kind); ka != kb {
		return ka - kb
	}
	if a.Length != b.Length {
		return a.Length - b.Length
	}
	return strings.Compare(a.Name, b.Name)
}

// Annotations is the aggregated result of a scan across all files.
type Annotations struct {
	Version   string                      `json:"version"`
	Timestamp time.Time                   `json:"timestamp"`
	Root      string                      `json:"root,omitempty"` // directory the file paths are relative to
	Files     map[string]*FileAnnotations `json:"files"`          // Key: relative file path
}

// NewAnnotations creates a new Annotations instance
func NewAnnotations() *Annotations {
	return &Annotations{
		Version:   Version,
		Timestamp: time.Now(),
		Files:     make(map[string]*FileAnnotations),
	}
}

// GetFiles returns the paths of all files, sorted.
func (a *Annotations) GetFiles() []string {
	files := make([]string, 0, len(a.Files))
	for file := range a.Files {
		files = append(files, file)
	}
	slices.Sort(files)
	return files
}

// Totals counts annotations per kind across all files.
func (a *Annotations) Totals() map[Kind]int {
	totals := make(map[Kind]int, len(Kinds))
	for _, f := range a.Files {
		for _, ann := range f.Annotations {
			totals[ann.Kind]++
		}
	}
	return totals
}

// FunctionCount returns the number of function scopes across all files.
func (a *Annotations) FunctionCount() int {
	n := 0
	for _, f := range a.Files {
		n += len(f.Functions)
	}
	return n
}
