package hostvar

import (
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/parser"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/region"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/scanner"
)

// HostVariable is one variable declared inside a DECLARE SECTION.
type HostVariable struct {
	Name           string `json:"name"`
	Type           string `json:"type"`           // declared C type keyword
	DeclarationPos int    `json:"declarationPos"` // offset of the first byte of Name
	FunctionScope  string `json:"functionScope"`  // name of the owning function
}

// Reference is a use of a host variable. Offset and Length cover the name
// only, so for ':name' the colon is not included.
type Reference struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Name   string `json:"name"`
}

// Region returns the bytes covered by the reference.
func (r Reference) Region() region.Region {
	return region.Region{Start: r.Offset, End: r.Offset + r.Length}
}

// Section is a matched BEGIN/END DECLARE SECTION pair.
type Section struct {
	Begin *parser.Statement
	End   *parser.Statement
}

// Region spans from the BEGIN marker through the END marker.
func (s Section) Region() region.Region {
	return region.Region{Start: s.Begin.Start, End: s.End.End}
}

// Content spans the text between the two markers.
func (s Section) Content() region.Region {
	return region.Region{Start: s.Begin.End, End: s.End.Start}
}

// Analysis is everything found for one function scope.
type Analysis struct {
	Scope scanner.FunctionScope

	Declared       []HostVariable
	SQLReferences  []Reference
	BareReferences []Reference

	// Statements are the EXEC SQL statements outside declare sections, in
	// source order.
	Statements []*parser.Statement
	Sections   []Section

	// Excluded holds comments, literals, SQL statements and declare sections.
	Excluded region.Set
}

// DeclaredNames returns the distinct declared names in declaration order.
func (a *Analysis) DeclaredNames() []string {
	seen := make(map[string]struct{}, len(a.Declared))
	var names []string
	for _, hv := range a.Declared {
		if _, ok := seen[hv.Name]; ok {
			continue
		}
		seen[hv.Name] = struct{}{}
		names = append(names, hv.Name)
	}
	return names
}

// Lookup returns the first declaration of name.
func (a *Analysis) Lookup(name string) (HostVariable, bool) {
	for _, hv := range a.Declared {
		if hv.Name == name {
			return hv, true
		}
	}
	return HostVariable{}, false
}
