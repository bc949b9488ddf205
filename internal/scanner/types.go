package scanner

import "github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/region"

// Body is the byte range strictly between a function's outermost braces.
type Body struct {
	Start int `json:"start"` // offset just after '{'
	End   int `json:"end"`   // offset of the matching '}'
}

// FunctionScope identifies one function definition found in a buffer.
// Start is inclusive and End exclusive (one past the closing brace), so
// 0 <= Start < Body.Start <= Body.End < End <= len(text).
type FunctionScope struct {
	Name   string `json:"name"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Length int    `json:"length"`
	Body   Body   `json:"body"`
}

// Region returns the whole definition as a region.
func (f FunctionScope) Region() region.Region {
	return region.Region{Start: f.Start, End: f.End}
}

// BodyRegion returns the body as a region.
func (f FunctionScope) BodyRegion() region.Region {
	return region.Region{Start: f.Body.Start, End: f.Body.End}
}

// State is the scanner's lexical state register.
type State int

const (
	Default State = iota
	InLineComment
	InBlockComment
	InString
	InChar
	InPreprocessor
	InCandidateDeclaration
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case Default:
		return "default"
	case InLineComment:
		return "line-comment"
	case InBlockComment:
		return "block-comment"
	case InString:
		return "string"
	case InChar:
		return "char"
	case InPreprocessor:
		return "preprocessor"
	case InCandidateDeclaration:
		return "candidate-declaration"
	default:
		return "unknown"
	}
}
