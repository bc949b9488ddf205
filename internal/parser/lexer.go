/*
 * lexer.go
 *
 * SQL lexer for the text of embedded `EXEC SQL ... ;` statements.
 *
 * The token rules follow the PostgreSQL core lexer closely enough to find the
 * statement terminator reliably: a ';' inside a quoted literal, a delimited
 * identifier, a dollar-quoted block or a comment never ends a statement.  On
 * top of that the lexer understands the embedded-SQL host variable syntax, a
 * ':' directly followed by an identifier, and returns it as one HostVar token.
 * '::' stays a typecast and ':=' an assignment.
 *
 * The lexer never fails.  Unterminated literals and comments run to the end
 * of the input and the caller sees EOF.
 *
 * Usage:
 *
 *	lx := parser.NewLexer(src)
 *	for {
 *	    tok := lx.Scan()
 *	    if tok.Type == parser.EOF { break }
 *	    // use tok.Type, tok.Text, tok.Pos
 *	}
 */
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

/*
 * TokenType is the lexical category of a token.
 *
 * Single-character punctuation tokens use their byte value as the TokenType
 * (',' '(' ')' ';' and friends), so callers can compare against
 * TokenType(';') directly.  Named multi-character tokens are >= 1000.
 */
type TokenType int

// EOF is returned when the input is fully consumed.
const EOF TokenType = 0

const (
	// Ident is an unquoted or double-quoted identifier, keywords included.
	Ident TokenType = 1000 + iota

	// Param is a positional parameter $1, $2, ...
	Param

	// Number is an integer or floating-point literal.
	Number

	// String is a quoted literal in any style: '...', E'...', $tag$...$tag$.
	String

	// Comment is a -- line comment or a (possibly nested) block comment.
	Comment

	// Op is an operator with no dedicated token type.
	Op

	// HostVar is a host variable reference, ':' followed by an identifier.
	// Text includes the colon.
	HostVar

	Typecast    // ::
	ColonEquals // :=
	DotDot      // ..

	NotEquals     // <> or !=
	LessEquals    // <=
	GreaterEquals // >=
)

// String returns a short name for named token types and the character itself
// for punctuation.
func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Param:
		return "Param"
	case Number:
		return "Number"
	case String:
		return "String"
	case Comment:
		return "Comment"
	case Op:
		return "Op"
	case HostVar:
		return "HostVar"
	case Typecast:
		return "Typecast"
	case ColonEquals:
		return "ColonEquals"
	case DotDot:
		return "DotDot"
	case NotEquals:
		return "NotEquals"
	case LessEquals:
		return "LessEquals"
	case GreaterEquals:
		return "GreaterEquals"
	}
	if t > 0 && t < 128 {
		return string(rune(t))
	}
	return "Unknown"
}

// Token is a single lexical token from SQL source text.
type Token struct {
	Type TokenType // Lexical category.
	Text string    // Raw source bytes that form this token.
	Pos  int       // Byte offset of the first character (0-based).
}

// End returns the offset one past the token.
func (t Token) End() int { return t.Pos + len(t.Text) }

// Is reports whether t is an identifier spelled word, ignoring case.
func (t Token) Is(word string) bool {
	return t.Type == Ident && strings.EqualFold(t.Text, word)
}

// HostVarName returns the variable name of a HostVar token without the colon.
func (t Token) HostVarName() string {
	if t.Type != HostVar {
		return ""
	}
	return t.Text[1:]
}

/*
 * Lexer tokenizes SQL text one token at a time.
 * Whitespace between tokens is silently consumed.
 * All byte offsets (Pos) are 0-based indices into the original source string,
 * also when the lexer was started in the middle of it.
 */
type Lexer struct {
	src      string
	pos      int
	embedded bool // C comment rules: "//" comments, no nested "/* */"
}

// NewLexer returns a Lexer that reads all of src.
func NewLexer(src string) *Lexer { return &Lexer{src: src} }

// NewLexerRange returns a Lexer that reads src[pos:limit] while reporting
// offsets relative to the start of src.
func NewLexerRange(src string, pos, limit int) *Lexer {
	limit = min(max(limit, 0), len(src))
	pos = min(max(pos, 0), limit)
	return &Lexer{src: src[:limit], pos: pos}
}

// NewEmbeddedLexer is NewLexerRange for SQL embedded in C source: "//"
// starts a line comment and block comments do not nest.
func NewEmbeddedLexer(src string, pos, limit int) *Lexer {
	lx := NewLexerRange(src, pos, limit)
	lx.embedded = true
	return lx
}

// Pos returns the byte offset of the next character to be read.
func (s *Lexer) Pos() int { return s.pos }

/*
 * Scan returns the next token, skipping any leading whitespace.
 * Returns Token{Type: EOF} when the input is exhausted.
 *
 * Case order matters: comments before operators (both start with op chars),
 * string prefixes before identifiers, and the ':' forms before the generic
 * single-character path.
 */
func (s *Lexer) Scan() Token {
	s.skipWS()
	if s.pos >= len(s.src) {
		return Token{Type: EOF, Pos: s.pos}
	}
	start := s.pos
	ch := s.src[s.pos]

	switch {
	case ch == '-' && s.peek(1) == '-', s.embedded && ch == '/' && s.peek(1) == '/':
		return s.lineComment(start)

	case ch == '/' && s.peek(1) == '*':
		return s.blockComment(start)

	case (ch == 'e' || ch == 'E') && s.peek(1) == '\'':
		return s.escapeString(start)

	case ch == '\'':
		return s.quotedString(start)

	case ch == '"':
		return s.quotedIdent(start)

	case ch == '$':
		return s.dollar(start)

	case isDecDigit(ch), ch == '.' && isDecDigit(s.peek(1)):
		return s.number(start)

	case isIdentStart(ch) || ch >= 0x80:
		return s.ident(start, Ident)

	/*
	 * ':' forms.  A host variable needs the identifier to follow the colon
	 * directly; ": name" is a bare colon and a name.
	 */
	case ch == ':' && s.peek(1) == ':':
		s.pos += 2
		return Token{Type: Typecast, Text: "::", Pos: start}
	case ch == ':' && s.peek(1) == '=':
		s.pos += 2
		return Token{Type: ColonEquals, Text: ":=", Pos: start}
	case ch == ':' && isIdentStart(s.peek(1)):
		s.pos++
		return s.ident(start, HostVar)

	case ch == '.' && s.peek(1) == '.':
		s.pos += 2
		return Token{Type: DotDot, Text: "..", Pos: start}

	default:
		if isOpChar(ch) {
			return s.operator(start)
		}
		if ch >= 0x80 {
			_, size := utf8.DecodeRuneInString(s.src[s.pos:])
			s.pos += max(size, 1)
			return Token{Type: TokenType(s.src[start]), Text: s.src[start:s.pos], Pos: start}
		}
		s.pos++
		return Token{Type: TokenType(ch), Text: string(ch), Pos: start}
	}
}

// ScanAll tokenises the remaining input and returns every token (no EOF entry).
func (s *Lexer) ScanAll() []Token {
	var toks []Token
	for {
		t := s.Scan()
		if t.Type == EOF {
			break
		}
		toks = append(toks, t)
	}
	return toks
}

// ---------------------------------------------------------------------------
// Internal lexer methods
// ---------------------------------------------------------------------------

// peek returns the byte at position s.pos+offset, or 0 if out of bounds.
func (s *Lexer) peek(offset int) byte {
	if i := s.pos + offset; i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *Lexer) skipWS() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			s.pos++
		default:
			return
		}
	}
}

// lineComment consumes from "--" (or "//") to end of line (newline not consumed).
func (s *Lexer) lineComment(start int) Token {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
		s.pos++
	}
	return Token{Type: Comment, Text: s.src[start:s.pos], Pos: start}
}

// blockComment consumes a block comment.  Block comments nest in PostgreSQL
// but not in C.
func (s *Lexer) blockComment(start int) Token {
	s.pos += 2 /* consume opening "/*" */
	for depth := 1; s.pos < len(s.src) && depth > 0; {
		switch {
		case !s.embedded && s.src[s.pos] == '/' && s.peek(1) == '*':
			depth++
			s.pos += 2
		case s.src[s.pos] == '*' && s.peek(1) == '/':
			depth--
			s.pos += 2
		default:
			s.pos++
		}
	}
	s.pos = min(s.pos, len(s.src))
	return Token{Type: Comment, Text: s.src[start:s.pos], Pos: start}
}

// quotedString consumes a '...' literal; '' is an escaped quote.
func (s *Lexer) quotedString(start int) Token {
	s.pos++ /* consume opening ' */
	s.closeQuote('\'', false)
	return Token{Type: String, Text: s.src[start:s.pos], Pos: start}
}

// escapeString consumes an E'...' literal, where a backslash escapes the next
// byte in addition to the '' form.
func (s *Lexer) escapeString(start int) Token {
	s.pos += 2 /* consume E' */
	s.closeQuote('\'', true)
	return Token{Type: String, Text: s.src[start:s.pos], Pos: start}
}

// quotedIdent consumes a "..." delimited identifier; "" is an escaped quote.
func (s *Lexer) quotedIdent(start int) Token {
	s.pos++ /* consume opening " */
	s.closeQuote('"', false)
	return Token{Type: Ident, Text: s.src[start:s.pos], Pos: start}
}

// closeQuote advances past the quote that closes the current literal, or to
// the end of input.
func (s *Lexer) closeQuote(quote byte, backslash bool) {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case backslash && ch == '\\':
			s.pos = min(s.pos+2, len(s.src))
		case ch != quote:
			s.pos++
		case s.peek(1) == quote:
			s.pos += 2 /* doubled quote */
		default:
			s.pos++
			return
		}
	}
}

/*
 * dollar dispatches between a positional parameter ($1) and a dollar-quoted
 * string ($tag$...$tag$, including the empty-tag $$...$$ form).  A '$' that
 * starts neither is returned as a single-character token.
 */
func (s *Lexer) dollar(start int) Token {
	s.pos++ /* consume leading $ */

	if isDecDigit(s.peek(0)) {
		for s.pos < len(s.src) && isDecDigit(s.src[s.pos]) {
			s.pos++
		}
		return Token{Type: Param, Text: s.src[start:s.pos], Pos: start}
	}

	if s.pos < len(s.src) && (s.src[s.pos] == '$' || isDolqStart(s.src[s.pos])) {
		tagStart := s.pos
		for s.pos < len(s.src) && isDolqCont(s.src[s.pos]) {
			s.pos++
		}
		if s.pos >= len(s.src) || s.src[s.pos] != '$' {
			s.pos = start + 1
			return Token{Type: TokenType('$'), Text: "$", Pos: start}
		}
		s.pos++ /* consume closing $ of opening delimiter */
		closing := "$" + s.src[tagStart:s.pos-1] + "$"

		if idx := strings.Index(s.src[s.pos:], closing); idx < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += idx + len(closing)
		}
		return Token{Type: String, Text: s.src[start:s.pos], Pos: start}
	}

	return Token{Type: TokenType('$'), Text: "$", Pos: start}
}

// number scans an integer or floating-point literal.  "1..2" leaves the ".."
// for the range operator.
func (s *Lexer) number(start int) Token {
	for s.pos < len(s.src) && (isDecDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' && s.peek(1) != '.' {
		s.pos++
		for s.pos < len(s.src) && (isDecDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
			s.pos++
		}
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		next := s.peek(1)
		if isDecDigit(next) || ((next == '+' || next == '-') && isDecDigit(s.peek(2))) {
			s.pos += 2
			for s.pos < len(s.src) && isDecDigit(s.src[s.pos]) {
				s.pos++
			}
		}
	}
	return Token{Type: Number, Text: s.src[start:s.pos], Pos: start}
}

// ident scans an identifier run, accepting non-ASCII letters and digits.
// typ is Ident for ordinary words and HostVar when a ':' was consumed.
func (s *Lexer) ident(start int, typ TokenType) Token {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch < 0x80 {
			if !isIdentCont(ch) {
				break
			}
			s.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.pos += size
	}
	return Token{Type: typ, Text: s.src[start:s.pos], Pos: start}
}

/*
 * operator consumes a run of operator characters, stopping before an
 * embedded comment start.  A trailing '+' or '-' is split off unless the run
 * contains one of ~!@#^&|`?% so that "a=-1" lexes as '=' then '-'.
 */
func (s *Lexer) operator(start int) Token {
	for s.pos < len(s.src) && isOpChar(s.src[s.pos]) {
		if s.src[s.pos] == '-' && s.peek(1) == '-' {
			break
		}
		if s.src[s.pos] == '/' && s.peek(1) == '*' {
			break
		}
		s.pos++
	}
	// a comment start at the very first byte was dispatched earlier, so at
	// least one byte is consumed here

	nchars := s.pos - start
	if nchars > 1 && !strings.ContainsAny(s.src[start:s.pos-1], "~!@#^&|`?%") {
		for nchars > 1 {
			if t := s.src[start+nchars-1]; t != '+' && t != '-' {
				break
			}
			nchars--
		}
	}
	s.pos = start + nchars
	text := s.src[start:s.pos]

	if nchars == 1 {
		return Token{Type: TokenType(text[0]), Text: text, Pos: start}
	}
	switch text {
	case "<>", "!=":
		return Token{Type: NotEquals, Text: text, Pos: start}
	case "<=":
		return Token{Type: LessEquals, Text: text, Pos: start}
	case ">=":
		return Token{Type: GreaterEquals, Text: text, Pos: start}
	}
	return Token{Type: Op, Text: text, Pos: start}
}

// ---------------------------------------------------------------------------
// Character-class predicates
// ---------------------------------------------------------------------------

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isIdentCont accepts '$', which PostgreSQL allows inside identifiers.
func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDecDigit(ch) || ch == '$'
}

func isDolqStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isDolqCont(ch byte) bool {
	return isDolqStart(ch) || isDecDigit(ch)
}

func isDecDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isOpChar(ch byte) bool {
	switch ch {
	case '~', '!', '@', '#', '^', '&', '|', '`', '?',
		'+', '-', '*', '/', '%', '<', '>', '=':
		return true
	}
	return false
}
