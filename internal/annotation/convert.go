package annotation

import (
	"fmt"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/hostvar"
)

// FromAnalyses turns the per-function analyses of text into file annotations.
// Offsets are kept; lines and columns are derived from text.
func FromAnalyses(path, language, text string, analyses []hostvar.Analysis) *FileAnnotations {
	file := NewFileAnnotations(path, language)
	lines := NewLineIndex(text)

	add := func(k Kind, offset, length int, name, function, label string) {
		line, col := lines.Position(offset)
		file.Annotations = append(file.Annotations, Annotation{
			Kind:     k,
			Offset:   offset,
			Length:   length,
			Line:     line,
			Column:   col,
			Name:     name,
			Function: function,
			Label:    label,
		})
	}

	for i := range analyses {
		a := &analyses[i]
		fn := a.Scope.Name
		file.Functions = append(file.Functions, FunctionSummary{
			Name:          fn,
			Start:         a.Scope.Start,
			End:           a.Scope.End,
			BodyStart:     a.Scope.Body.Start,
			BodyEnd:       a.Scope.Body.End,
			Line:          lines.Line(a.Scope.Start),
			HostVariables: len(a.Declared),
		})

		for _, hv := range a.Declared {
			add(KindDeclaration, hv.DeclarationPos, len(hv.Name), hv.Name, fn,
				fmt.Sprintf("host variable %s (%s) declared in %s", hv.Name, hv.Type, fn))
		}
		for _, st := range a.Statements {
			add(KindSQLStatement, st.Start, st.End-st.Start, "", fn,
				fmt.Sprintf("EXEC SQL %s statement", st.Kind))
		}
		for _, ref := range a.SQLReferences {
			add(KindSQLReference, ref.Offset, ref.Length, ref.Name, fn, referenceLabel(a, lines, ref, "SQL host variable"))
		}
		for _, ref := range a.BareReferences {
			add(KindBareReference, ref.Offset, ref.Length, ref.Name, fn, referenceLabel(a, lines, ref, "host variable"))
		}
	}

	file.Sort()
	return file
}

func referenceLabel(a *hostvar.Analysis, lines *LineIndex, ref hostvar.Reference, what string) string {
	hv, ok := a.Lookup(ref.Name)
	if !ok {
		return fmt.Sprintf("%s %s (not declared in %s)", what, ref.Name, a.Scope.Name)
	}
	return fmt.Sprintf("%s %s (%s) declared at line %d", what, ref.Name, hv.Type, lines.Line(hv.DeclarationPos))
}
