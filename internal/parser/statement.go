package parser

import (
	"strconv"
	"strings"
)

// StatementKind classifies an embedded SQL statement by its leading keywords.
type StatementKind int

const (
	KindOther StatementKind = iota
	KindBeginDeclare
	KindEndDeclare
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindDeclareCursor
	KindOpen
	KindFetch
	KindClose
	KindPrepare
	KindExecute
	KindCommit
	KindRollback
	KindConnect
	KindInclude
	KindWhenever
)

// String returns a string representation of StatementKind
func (k StatementKind) String() string {
	switch k {
	case KindBeginDeclare:
		return "begin-declare"
	case KindEndDeclare:
		return "end-declare"
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindDeclareCursor:
		return "declare-cursor"
	case KindOpen:
		return "open"
	case KindFetch:
		return "fetch"
	case KindClose:
		return "close"
	case KindPrepare:
		return "prepare"
	case KindExecute:
		return "execute"
	case KindCommit:
		return "commit"
	case KindRollback:
		return "rollback"
	case KindConnect:
		return "connect"
	case KindInclude:
		return "include"
	case KindWhenever:
		return "whenever"
	default:
		return "other"
	}
}

// MarshalText encodes the kind by name.
func (k StatementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Checkable reports whether statements of this kind can be described by a
// PostgreSQL server once host variables are replaced by parameters.
func (k StatementKind) Checkable() bool {
	switch k {
	case KindSelect, KindInsert, KindUpdate, KindDelete:
		return true
	}
	return false
}

// HostVarRef is one ':name' occurrence inside a statement.
type HostVarRef struct {
	Name      string `json:"name"`
	Pos       int    `json:"pos"`       // offset of the colon
	Indicator bool   `json:"indicator"` // null indicator of the preceding variable
	Output    bool   `json:"output"`    // target of SELECT ... INTO or FETCH ... INTO
}

// NameOffset returns the offset of the first byte of the name.
func (r HostVarRef) NameOffset() int { return r.Pos + 1 }

// Statement is one `EXEC SQL ... ;` statement located in a larger buffer.
// Start is the offset of EXEC and End is one past the terminating ';'.
type Statement struct {
	Kind     StatementKind
	Start    int
	End      int
	Text     string
	Tokens   []Token // every token from EXEC through ';', comments included
	HostVars []HostVarRef
}

/*
 * ParseStatement lexes the statement that starts at pos, which must be the
 * offset of an EXEC keyword, up to the first ';' that is not inside a SQL
 * literal, delimited identifier or comment.  Comments follow C rules.
 * Nothing at or after limit is read.
 *
 * When a literal or comment swallows every ';' before limit, the statement
 * ends at the first raw ';' instead.  Returns nil only when there is no ';'
 * at all before limit.
 */
func ParseStatement(src string, pos, limit int) *Statement {
	toks, ok := lexStatement(NewEmbeddedLexer(src, pos, limit))
	if !ok {
		limit = min(max(limit, 0), len(src))
		if pos < 0 || pos >= limit {
			return nil
		}
		semi := strings.IndexByte(src[pos:limit], ';')
		if semi < 0 {
			return nil
		}
		semi += pos
		toks, _ = lexStatement(NewEmbeddedLexer(src, pos, semi))
		toks = append(toks, Token{Type: TokenType(';'), Text: ";", Pos: semi})
	}

	start := toks[0].Pos
	end := toks[len(toks)-1].End()
	stmt := &Statement{
		Start:  start,
		End:    end,
		Text:   src[start:end],
		Tokens: toks,
	}
	significant := stmt.significant()
	stmt.Kind = classifyTokens(significant)
	stmt.HostVars = collectHostVars(significant, stmt.Kind)
	return stmt
}

// lexStatement scans tokens up to and including the first ';' token. ok is
// false when the input ends first; toks then holds everything read.
func lexStatement(lx *Lexer) (toks []Token, ok bool) {
	for {
		tok := lx.Scan()
		if tok.Type == EOF {
			return toks, false
		}
		toks = append(toks, tok)
		if tok.Type == TokenType(';') {
			return toks, true
		}
	}
}

// ParseStatements returns every EXEC SQL statement in src, skipping text that
// is not part of one.  Useful for plain SQL scripts and tests; C sources go
// through the host-variable extractor, which knows about C comments.
func ParseStatements(src string) []*Statement {
	var out []*Statement
	lx := NewLexer(src)
	for {
		tok := lx.Scan()
		if tok.Type == EOF {
			return out
		}
		if !tok.Is("EXEC") {
			continue
		}
		stmt := ParseStatement(src, tok.Pos, len(src))
		if stmt == nil {
			return out
		}
		out = append(out, stmt)
		lx = NewLexerRange(src, stmt.End, len(src))
	}
}

// significant returns the tokens without comments.
func (st *Statement) significant() []Token {
	out := make([]Token, 0, len(st.Tokens))
	for _, t := range st.Tokens {
		if t.Type != Comment {
			out = append(out, t)
		}
	}
	return out
}

// classifyTokens determines the statement kind from its leading tokens.
// tokens starts with EXEC SQL and ends with ';'.
func classifyTokens(tokens []Token) StatementKind {
	if len(tokens) < 3 || !tokens[0].Is("EXEC") || !tokens[1].Is("SQL") {
		return KindOther
	}
	words := tokens[2:]

	// BEGIN/END DECLARE SECTION are markers only when nothing else follows
	if len(words) == 4 && words[1].Is("DECLARE") && words[2].Is("SECTION") {
		switch {
		case words[0].Is("BEGIN"):
			return KindBeginDeclare
		case words[0].Is("END"):
			return KindEndDeclare
		}
	}

	first := words[0]
	switch {
	case first.Is("SELECT"), first.Is("WITH"), first.Is("VALUES"):
		return KindSelect
	case first.Is("INSERT"):
		return KindInsert
	case first.Is("UPDATE"):
		return KindUpdate
	case first.Is("DELETE"):
		return KindDelete
	case first.Is("DECLARE"):
		for _, w := range words[1:] {
			if w.Is("CURSOR") {
				return KindDeclareCursor
			}
		}
		return KindOther
	case first.Is("OPEN"):
		return KindOpen
	case first.Is("FETCH"):
		return KindFetch
	case first.Is("CLOSE"):
		return KindClose
	case first.Is("PREPARE"):
		return KindPrepare
	case first.Is("EXECUTE"):
		return KindExecute
	case first.Is("COMMIT"):
		return KindCommit
	case first.Is("ROLLBACK"):
		return KindRollback
	case first.Is("CONNECT"):
		return KindConnect
	case first.Is("INCLUDE"):
		return KindInclude
	case first.Is("WHENEVER"):
		return KindWhenever
	default:
		return KindOther
	}
}

// collectHostVars records every host variable token, marking indicators and
// INTO targets.
func collectHostVars(tokens []Token, kind StatementKind) []HostVarRef {
	var refs []HostVarRef
	into := intoRange(tokens, kind)
	for i, t := range tokens {
		if t.Type != HostVar {
			continue
		}
		refs = append(refs, HostVarRef{
			Name:      t.HostVarName(),
			Pos:       t.Pos,
			Indicator: isIndicator(tokens, i),
			Output:    i >= into.start && i < into.end,
		})
	}
	return refs
}

type tokenSpan struct{ start, end int }

// intoRange returns the token index range of the INTO host variable list of
// a SELECT or FETCH statement: the INTO keyword through the last host
// variable, comma or INDICATOR keyword that follows it.
func intoRange(tokens []Token, kind StatementKind) tokenSpan {
	if kind != KindSelect && kind != KindFetch {
		return tokenSpan{}
	}
	depth := 0
	for i, t := range tokens {
		switch {
		case t.Type == TokenType('('):
			depth++
		case t.Type == TokenType(')'):
			depth = max(depth-1, 0)
		case depth == 0 && t.Is("INTO") && i+1 < len(tokens) && tokens[i+1].Type == HostVar:
			j := i + 1
			for j < len(tokens) && (tokens[j].Type == HostVar ||
				tokens[j].Type == TokenType(',') || tokens[j].Is("INDICATOR")) {
				j++
			}
			// a trailing comma belongs to the surrounding statement
			for j > i+1 && tokens[j-1].Type == TokenType(',') {
				j--
			}
			return tokenSpan{start: i, end: j}
		}
	}
	return tokenSpan{}
}

// isIndicator reports whether the host variable at tokens[i] is the null
// indicator of the variable before it, written either directly adjacent
// (:v:ind) or with the INDICATOR keyword (:v INDICATOR :ind).
func isIndicator(tokens []Token, i int) bool {
	if i == 0 {
		return false
	}
	prev := tokens[i-1]
	if prev.Type == HostVar && prev.End() == tokens[i].Pos {
		return true
	}
	return prev.Is("INDICATOR") && i >= 2 && tokens[i-2].Type == HostVar
}

/*
 * PlaceholderSQL rewrites a SELECT, INSERT, UPDATE or DELETE statement into
 * plain PostgreSQL text that a server can prepare:
 *
 *   - the EXEC SQL prefix and the terminating ';' are dropped,
 *   - a SELECT ... INTO :a, :b target list is dropped,
 *   - indicator variables are dropped,
 *   - every remaining host variable becomes $n; repeated names share one n,
 *   - comments are dropped and each run of whitespace becomes one space.
 *
 * names lists the host variable bound to $1, $2, ... in order.  ok is false
 * for statement kinds that cannot be described this way.
 */
func (st *Statement) PlaceholderSQL() (sql string, names []string, ok bool) {
	if !st.Kind.Checkable() {
		return "", nil, false
	}
	tokens := st.significant()
	into := intoRange(tokens, st.Kind)

	var b strings.Builder
	params := make(map[string]int)
	prevEnd := -1 // end of the previous source token, kept or dropped
	gap := false  // whitespace, a comment or a dropped token since last write

	// tokens[0:2] is EXEC SQL, the last token is ';'
	for i := 2; i < len(tokens)-1; i++ {
		t := tokens[i]
		if prevEnd >= 0 && t.Pos > prevEnd {
			gap = true
		}
		prevEnd = t.End()

		drop := (i >= into.start && i < into.end) ||
			(t.Type == HostVar && isIndicator(tokens, i)) ||
			(t.Is("INDICATOR") && i > 0 && tokens[i-1].Type == HostVar &&
				i+1 < len(tokens) && tokens[i+1].Type == HostVar)
		if drop {
			gap = true
			continue
		}

		if b.Len() > 0 && gap {
			b.WriteByte(' ')
		}
		gap = false

		if t.Type != HostVar {
			b.WriteString(t.Text)
			continue
		}
		name := t.HostVarName()
		n, seen := params[name]
		if !seen {
			names = append(names, name)
			n = len(names)
			params[name] = n
		}
		b.WriteString("$" + strconv.Itoa(n))
	}
	return b.String(), names, true
}
