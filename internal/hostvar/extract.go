/*
 * extract.go
 *
 * Host-variable extraction for one function scope.
 *
 * The body is walked once as C text.  Comments and string/char literals are
 * recorded as regions, and every EXEC SQL statement is handed to the SQL
 * lexer, which finds its terminating ';' and its ':name' tokens.  From that
 * single walk the remaining passes are cheap:
 *
 *   - declare sections pair BEGIN and END markers first-fit,
 *   - declarations are matched inside each section,
 *   - statements outside sections yield SQL references,
 *   - the merged exclusion set filters the bare-reference scan.
 *
 * Nothing here allocates state beyond the returned Analysis, so scopes can be
 * analysed independently and in parallel.
 */
package hostvar

import (
	"strings"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/parser"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/region"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/scanner"
)

// Extract returns the host variables declared in the declare sections of
// scope, in source order.
func Extract(text string, scope scanner.FunctionScope) []HostVariable {
	return Analyze(text, scope).Declared
}

// AnalyzeDocument analyses every function scope in text.
func AnalyzeDocument(text string) []Analysis {
	var out []Analysis
	for scope := range scanner.Scopes(text) {
		out = append(out, Analyze(text, scope))
	}
	return out
}

// Analyze runs all extraction passes over the body of scope.
func Analyze(text string, scope scanner.FunctionScope) Analysis {
	a := Analysis{Scope: scope}
	body := clampBody(text, scope)

	lexical, statements := walkBody(text, body)
	lexicalSet := region.Merge(lexical)

	a.Sections = pairSections(statements)
	for _, sec := range a.Sections {
		a.Declared = append(a.Declared, declarations(text, sec.Content(), lexicalSet, scope.Name)...)
	}

	excluded := lexical
	for _, sec := range a.Sections {
		excluded = append(excluded, sec.Region())
	}
	sections := region.Merge(sectionRegions(a.Sections))
	for _, st := range statements {
		if sections.Covers(region.Region{Start: st.Start, End: st.End}) {
			continue
		}
		a.Statements = append(a.Statements, st)
		excluded = append(excluded, region.Region{Start: st.Start, End: st.End})
		for _, hv := range st.HostVars {
			a.SQLReferences = append(a.SQLReferences, Reference{
				Offset: hv.NameOffset(),
				Length: len(hv.Name),
				Name:   hv.Name,
			})
		}
	}
	a.Excluded = region.Merge(excluded)

	a.BareReferences = bareReferences(text, body, a.Excluded, a.DeclaredNames())
	return a
}

// clampBody returns the body of scope limited to the bounds of text.
func clampBody(text string, scope scanner.FunctionScope) region.Region {
	start := min(max(scope.Body.Start, 0), len(text))
	end := min(max(scope.Body.End, start), len(text))
	return region.Region{Start: start, End: end}
}

/*
 * walkBody scans body as C text.  It returns the comment and literal regions
 * and the EXEC SQL statements in source order.  A statement is consumed as a
 * unit, so quotes and comment markers inside its SQL never open C regions.
 */
func walkBody(text string, body region.Region) ([]region.Region, []*parser.Statement) {
	var (
		lexical    []region.Region
		statements []*parser.Statement
	)
	pos, end := body.Start, body.End
	for pos < end {
		ch := text[pos]
		switch {
		case ch == '/' && pos+1 < end && text[pos+1] == '/':
			next := scanner.LineCommentEnd(text, pos, end)
			lexical = append(lexical, region.Region{Start: pos, End: next})
			pos = next
		case ch == '/' && pos+1 < end && text[pos+1] == '*':
			next := scanner.BlockCommentEnd(text, pos, end)
			lexical = append(lexical, region.Region{Start: pos, End: next})
			pos = next
		case ch == '"' || ch == '\'':
			next := scanner.QuotedEnd(text, pos, end)
			lexical = append(lexical, region.Region{Start: pos, End: next})
			pos = next
		case ch >= '0' && ch <= '9':
			pos = scanner.NumberEnd(text, pos, end)
		case scanner.IsIdentStart(ch):
			wordEnd := min(scanner.IdentEnd(text, pos), end)
			if strings.EqualFold(text[pos:wordEnd], "EXEC") && followedBySQL(text, wordEnd, end) {
				if st := parser.ParseStatement(text, pos, end); st != nil {
					statements = append(statements, st)
					pos = st.End
					continue
				}
			}
			pos = wordEnd
		default:
			pos++
		}
	}
	return lexical, statements
}

// followedBySQL reports whether the next word after pos, skipping whitespace
// and block comments, is SQL.
func followedBySQL(text string, pos, limit int) bool {
	for pos < limit {
		switch {
		case scanner.IsSpace(text[pos]):
			pos++
		case text[pos] == '/' && pos+1 < limit && text[pos+1] == '*':
			pos = scanner.BlockCommentEnd(text, pos, limit)
		default:
			wordEnd := min(scanner.IdentEnd(text, pos), limit)
			return strings.EqualFold(text[pos:wordEnd], "SQL")
		}
	}
	return false
}

// pairSections pairs declare-section markers first-fit: a BEGIN while a
// section is open is ignored, the first END closes the open section, an END
// with no open section is ignored and an unclosed BEGIN yields nothing.
func pairSections(statements []*parser.Statement) []Section {
	var (
		out  []Section
		open *parser.Statement
	)
	for _, st := range statements {
		switch st.Kind {
		case parser.KindBeginDeclare:
			if open == nil {
				open = st
			}
		case parser.KindEndDeclare:
			if open != nil {
				out = append(out, Section{Begin: open, End: st})
				open = nil
			}
		}
	}
	return out
}

func sectionRegions(sections []Section) []region.Region {
	out := make([]region.Region, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Region())
	}
	return out
}

// bareReferences finds whole-word occurrences of names in body whose start
// is not excluded.
func bareReferences(text string, body region.Region, excluded region.Set, names []string) []Reference {
	if len(names) == 0 {
		return nil
	}
	declared := make(map[string]struct{}, len(names))
	for _, n := range names {
		declared[n] = struct{}{}
	}

	var out []Reference
	pos, end := body.Start, body.End
	for pos < end {
		if !scanner.IsIdentPart(text[pos]) {
			pos++
			continue
		}
		wordEnd := min(scanner.IdentEnd(text, pos), end)
		word := text[pos:wordEnd]
		if _, ok := declared[word]; ok && scanner.IsIdentStart(text[pos]) && !excluded.Contains(pos) {
			out = append(out, Reference{Offset: pos, Length: len(word), Name: word})
		}
		pos = wordEnd
	}
	return out
}
