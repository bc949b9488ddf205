package hostvar

import (
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/region"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/scanner"
)

// declarationTypes are the type keywords that can start a host variable
// declaration.
var declarationTypes = map[string]struct{}{
	"int": {}, "char": {}, "float": {}, "double": {}, "long": {}, "short": {},
	"unsigned": {}, "signed": {}, "void": {}, "struct": {}, "enum": {},
}

/*
 * declarations finds every statement of the form
 *
 *	TYPE NAME [ '[' DIGITS ']' ] [ '=' EXPR ] ';'
 *
 * inside content.  TYPE must be a whole word from declarationTypes and at
 * least one whitespace byte must separate it from NAME.  EXPR is everything up
 * to the next ';' and must not be empty.  A TYPE word inside a comment or
 * literal (skip) is ignored.  When a TYPE word does not start a declaration
 * the search resumes after that word, so "unsigned int x;" is found as an
 * int named x.
 */
func declarations(text string, content region.Region, skip region.Set, function string) []HostVariable {
	var out []HostVariable
	pos, limit := content.Start, content.End
	for pos < limit {
		if !scanner.IsIdentPart(text[pos]) {
			pos++
			continue
		}
		wordEnd := min(scanner.IdentEnd(text, pos), limit)
		word := text[pos:wordEnd]
		if _, ok := declarationTypes[word]; ok && !skip.Contains(pos) {
			if nameStart, nameEnd, end, ok := matchDeclaration(text, wordEnd, limit); ok {
				out = append(out, HostVariable{
					Name:           text[nameStart:nameEnd],
					Type:           word,
					DeclarationPos: nameStart,
					FunctionScope:  function,
				})
				pos = end
				continue
			}
		}
		pos = wordEnd
	}
	return out
}

// matchDeclaration matches the part of a declaration after its type word,
// which ends at pos. end is one past the terminating ';'.
func matchDeclaration(text string, pos, limit int) (nameStart, nameEnd, end int, ok bool) {
	nameStart = skipSpace(text, pos, limit)
	if nameStart == pos || nameStart >= limit || !scanner.IsIdentPart(text[nameStart]) {
		return 0, 0, 0, false
	}
	nameEnd = min(scanner.IdentEnd(text, nameStart), limit)

	p := nameEnd
	if q, ok := arrayBound(text, p, limit); ok {
		p = q
	}

	q := skipSpace(text, p, limit)
	if q >= limit {
		return 0, 0, 0, false
	}
	switch text[q] {
	case ';':
		return nameStart, nameEnd, q + 1, true
	case '=':
		// the initializer needs at least one byte before the ';'
		if q+1 >= limit || text[q+1] == ';' {
			break
		}
		for i := q + 2; i < limit; i++ {
			if text[i] == ';' {
				return nameStart, nameEnd, i + 1, true
			}
		}
	}
	return 0, 0, 0, false
}

// arrayBound matches optional whitespace followed by '[' DIGITS ']' with
// optional whitespace inside the brackets.
func arrayBound(text string, pos, limit int) (int, bool) {
	p := skipSpace(text, pos, limit)
	if p >= limit || text[p] != '[' {
		return pos, false
	}
	p = skipSpace(text, p+1, limit)
	digits := p
	for p < limit && text[p] >= '0' && text[p] <= '9' {
		p++
	}
	if p == digits {
		return pos, false
	}
	p = skipSpace(text, p, limit)
	if p >= limit || text[p] != ']' {
		return pos, false
	}
	return p + 1, true
}

func skipSpace(text string, pos, limit int) int {
	for pos < limit && scanner.IsSpace(text[pos]) {
		pos++
	}
	return pos
}
