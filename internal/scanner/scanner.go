/*
 * scanner.go
 *
 * Single-pass function-boundary scanner for C and C++ source that may carry
 * embedded SQL.
 *
 * The scanner walks the buffer once with a forward-only cursor and an explicit
 * state register.  Comments, string and character literals, and preprocessor
 * directives are isolated states, so braces and parentheses inside them never
 * reach the depth counters.  Function definitions are recognised from a small
 * lookback window: an identifier immediately followed by '(' whose most recent
 * type-like token is a type keyword or a pointer marker becomes a candidate;
 * the candidate is confirmed when '{' follows the closing ')' and emitted when
 * the matching '}' brings the brace depth back to where the body opened.
 *
 * Malformed input never fails: unterminated literals, comments and directives
 * run to the end of the buffer and simply produce no further scopes.
 *
 * Usage:
 *
 *	for fn := range scanner.Scopes(src) {
 *	    // fn.Name, fn.Start, fn.Body.Start, ...
 *	}
 */
package scanner

import (
	"iter"
	"slices"
)

// Scanner produces FunctionScope values from src in ascending Start order.
// It holds no state beyond its cursor over src; a new Scanner over the same
// text reproduces the same sequence.
type Scanner struct {
	src    string
	pos    int
	state  State
	resume State // restored when a comment, literal or directive ends

	braceDepth int
	parenDepth int

	// lookback window
	lastIdent      string
	lastIdentStart int
	afterIdent     bool   // lastIdent is the most recent significant token
	lastType       string // most recent type keyword or pointerMarker
	declStart      int    // first token of the current declaration, -1 if none

	candName  string
	candStart int

	inBody    bool
	bodyDepth int // brace depth outside the body being scanned
	bodyStart int
}

// NewScanner returns a Scanner that reads from src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, declStart: -1, candStart: -1}
}

// Pos returns the byte offset of the next character to be read.
func (s *Scanner) Pos() int { return s.pos }

// State returns the current lexical state.
func (s *Scanner) State() State { return s.state }

// Next advances to the end of the next function definition and returns its
// scope. It returns false once the input is exhausted.
func (s *Scanner) Next() (FunctionScope, bool) {
	for s.pos < len(s.src) {
		switch s.state {
		case Default, InCandidateDeclaration:
			if scope, ok := s.structural(); ok {
				return scope, true
			}
		case InLineComment:
			if s.src[s.pos] == '\n' {
				s.state = s.resume
			}
			s.pos++
		case InBlockComment:
			if s.src[s.pos] == '*' && s.peek(1) == '/' {
				s.state = s.resume
				s.advance(2)
			} else {
				s.pos++
			}
		case InString:
			s.quoted('"')
		case InChar:
			s.quoted('\'')
		case InPreprocessor:
			if s.src[s.pos] == '\n' && !continuesLine(s.src, s.pos) {
				s.state = s.resume
			}
			s.pos++
		}
	}
	return FunctionScope{}, false
}

// Scopes returns a lazy, restartable sequence of the function scopes in src.
func Scopes(src string) iter.Seq[FunctionScope] {
	return func(yield func(FunctionScope) bool) {
		s := NewScanner(src)
		for {
			scope, ok := s.Next()
			if !ok || !yield(scope) {
				return
			}
		}
	}
}

// FindScopes returns every function scope in src.
func FindScopes(src string) []FunctionScope {
	return slices.Collect(Scopes(src))
}

// ---------------------------------------------------------------------------
// Structural states
// ---------------------------------------------------------------------------

// structural handles one step in Default or InCandidateDeclaration. Rules are
// checked in priority order.
func (s *Scanner) structural() (FunctionScope, bool) {
	ch := s.src[s.pos]
	switch {
	case ch == '/' && s.peek(1) == '/':
		s.enter(InLineComment, 2)
	case ch == '/' && s.peek(1) == '*':
		s.enter(InBlockComment, 2)
	case ch == '"':
		s.afterIdent = false
		s.enter(InString, 1)
	case ch == '\'':
		s.afterIdent = false
		s.enter(InChar, 1)
	case ch == '#' && atLineStart(s.src, s.pos):
		s.afterIdent = false
		s.enter(InPreprocessor, 1)
	case ch == '{':
		s.openBrace()
	case ch == '}':
		return s.closeBrace()
	case ch == '(':
		s.openParen()
	case ch == ')':
		s.closeParen()
	case IsIdentStart(ch):
		s.ident()
	case isDigit(ch):
		s.number()
	case ch == '*':
		s.lastType = pointerMarker
		s.afterIdent = false
		s.pos++
	case ch == ';':
		s.semicolon()
	case IsSpace(ch):
		s.pos++
	default:
		s.afterIdent = false
		s.pos++
	}
	return FunctionScope{}, false
}

func (s *Scanner) openBrace() {
	if s.state == InCandidateDeclaration && s.parenDepth == 0 && !s.inBody {
		s.inBody = true
		s.bodyDepth = s.braceDepth
		s.bodyStart = s.pos + 1
		s.state = Default
	}
	s.braceDepth++
	s.resetDeclaration()
	s.pos++
}

func (s *Scanner) closeBrace() (FunctionScope, bool) {
	if s.braceDepth > 0 {
		s.braceDepth--
	}
	s.resetDeclaration()
	closing := s.pos
	s.pos++

	if !s.inBody || s.braceDepth != s.bodyDepth {
		return FunctionScope{}, false
	}

	scope := FunctionScope{
		Name:   s.candName,
		Start:  s.candStart,
		End:    closing + 1,
		Length: closing + 1 - s.candStart,
		Body:   Body{Start: s.bodyStart, End: closing},
	}
	s.inBody = false
	s.parenDepth = 0
	s.candName, s.candStart = "", -1
	return scope, true
}

func (s *Scanner) openParen() {
	s.parenDepth++
	if s.state == Default && !s.inBody && s.parenDepth == 1 && s.afterIdent &&
		(IsTypeKeyword(s.lastType) || s.lastType == pointerMarker) &&
		canNameFunction(s.lastIdent) {
		s.state = InCandidateDeclaration
		s.candName = s.lastIdent
		s.candStart = s.declStart
		if s.candStart < 0 {
			s.candStart = s.lastIdentStart
		}
	}
	s.afterIdent = false
	s.pos++
}

func (s *Scanner) closeParen() {
	if s.parenDepth > 0 {
		s.parenDepth--
	}
	s.afterIdent = false
	s.pos++

	if s.parenDepth != 0 || s.inBody {
		return
	}
	// a definition needs '{' after the parameter list; anything else is a
	// prototype or an expression
	if s.state == InCandidateDeclaration {
		if next := s.skipTrivia(s.pos); next < len(s.src) && s.src[next] != '{' {
			s.discardCandidate()
		}
	}
	// a top-level macro call such as MODULE_INIT(x) ends its line without ';'
	if s.state == Default && endsLine(s.src, s.pos) {
		s.resetDeclaration()
	}
}

func (s *Scanner) semicolon() {
	if s.state == InCandidateDeclaration {
		s.discardCandidate()
	}
	if !s.inBody {
		// ';' never appears inside a parenthesised top-level declarator
		s.parenDepth = 0
	}
	s.resetDeclaration()
	s.pos++
}

func (s *Scanner) ident() {
	start := s.pos
	s.pos = IdentEnd(s.src, s.pos)
	word := s.src[start:s.pos]

	if IsTypeKeyword(word) {
		s.lastType = word
	}
	if s.declStart < 0 && !s.inBody {
		s.declStart = start
	}
	s.lastIdent = word
	s.lastIdentStart = start
	s.afterIdent = true
}

func (s *Scanner) number() {
	s.pos = NumberEnd(s.src, s.pos, len(s.src))
	s.afterIdent = false
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// quoted handles one step inside a string or character literal.
func (s *Scanner) quoted(quote byte) {
	switch s.src[s.pos] {
	case '\\':
		s.advance(2)
	case quote:
		s.state = s.resume
		s.pos++
	default:
		s.pos++
	}
}

// skipTrivia returns the offset of the first byte at or after pos that is not
// whitespace, a comment, or a trailing C++ qualifier.
func (s *Scanner) skipTrivia(pos int) int {
	for pos < len(s.src) {
		ch := s.src[pos]
		switch {
		case IsSpace(ch):
			pos++
		case ch == '/' && pos+1 < len(s.src) && s.src[pos+1] == '/':
			pos = LineCommentEnd(s.src, pos, len(s.src))
		case ch == '/' && pos+1 < len(s.src) && s.src[pos+1] == '*':
			pos = BlockCommentEnd(s.src, pos, len(s.src))
		case IsIdentStart(ch):
			end := IdentEnd(s.src, pos)
			if _, ok := trailingQualifiers[s.src[pos:end]]; !ok {
				return pos
			}
			pos = end
		default:
			return pos
		}
	}
	return pos
}

func (s *Scanner) enter(state State, width int) {
	s.resume = s.state
	s.state = state
	s.advance(width)
}

func (s *Scanner) advance(n int) {
	s.pos = min(s.pos+n, len(s.src))
}

// peek returns the byte at position s.pos+offset, or 0 if out of bounds.
func (s *Scanner) peek(offset int) byte {
	if i := s.pos + offset; i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *Scanner) discardCandidate() {
	s.state = Default
	s.candName, s.candStart = "", -1
}

func (s *Scanner) resetDeclaration() {
	s.lastType = ""
	s.declStart = -1
	s.afterIdent = false
}
