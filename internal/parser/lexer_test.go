package parser

import (
	"strings"
	"testing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// tokTypes returns just the TokenType values from ScanAll.
func tokTypes(src string) []TokenType {
	tokens := NewLexer(src).ScanAll()
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

// tokTexts returns just the Text values from ScanAll.
func tokTexts(src string) []string {
	tokens := NewLexer(src).ScanAll()
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.Text
	}
	return texts
}

// first returns the first token from src.
func first(src string) Token {
	return NewLexer(src).Scan()
}

// assertTypes fails the test when the produced token type sequence does not
// match expected.
func assertTypes(t *testing.T, src string, want ...TokenType) {
	t.Helper()
	got := tokTypes(src)
	if len(got) != len(want) {
		t.Fatalf("src=%q\n  got  %v\n  want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("src=%q token[%d]: got %v, want %v\n  full got:  %v\n  full want: %v",
				src, i, got[i], want[i], got, want)
		}
	}
}

// assertTexts fails the test when the produced token text sequence does not
// match expected.
func assertTexts(t *testing.T, src string, want ...string) {
	t.Helper()
	got := tokTexts(src)
	if len(got) != len(want) {
		t.Fatalf("src=%q\n  got  %q\n  want %q", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("src=%q token[%d]: got %q, want %q", src, i, got[i], want[i])
		}
	}
}

// noSemicolon fails the test when src produces a ';' token.
func noSemicolon(t *testing.T, src string) {
	t.Helper()
	for _, tt := range tokTypes(src) {
		if tt == TokenType(';') {
			t.Fatalf("src=%q: semicolon tokenised as ';'", src)
		}
	}
}

// ── EOF / empty input ─────────────────────────────────────────────────────────

func TestEmpty(t *testing.T) {
	if tok := first(""); tok.Type != EOF {
		t.Fatalf("got %v, want EOF", tok.Type)
	}
}

func TestWhitespaceOnly(t *testing.T) {
	if tok := first("   \t\n  "); tok.Type != EOF {
		t.Fatalf("got %v, want EOF", tok.Type)
	}
}

// ── Comments ─────────────────────────────────────────────────────────────────

func TestLineComment(t *testing.T) {
	tok := first("-- this is a comment\n")
	if tok.Type != Comment || tok.Text != "-- this is a comment" {
		t.Fatalf("got %v %q", tok.Type, tok.Text)
	}
}

func TestNestedBlockComment(t *testing.T) {
	tok := first("/* outer /* inner */ still outer */")
	if tok.Type != Comment {
		t.Fatalf("got %v", tok.Type)
	}
	if !strings.HasSuffix(tok.Text, "still outer */") {
		t.Fatalf("nested comment ended too early: %q", tok.Text)
	}
}

func TestEmbeddedComments(t *testing.T) {
	src := "a // it's\nb /* x /* y */ c"
	got := NewEmbeddedLexer(src, 0, len(src)).ScanAll()
	var texts []string
	for _, tok := range got {
		texts = append(texts, tok.Text)
	}
	want := []string{"a", "// it's", "b", "/* x /* y */", "c"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Fatalf("tokens = %q, want %q", texts, want)
	}
	if got[1].Type != Comment || got[3].Type != Comment {
		t.Fatalf("expected comments, got %v and %v", got[1].Type, got[3].Type)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	assertTypes(t, "/* never closed ;", Comment)
}

func TestSemicolonInsideComment(t *testing.T) {
	noSemicolon(t, "/* ; */ x -- ;\n")
}

// ── String literals ───────────────────────────────────────────────────────────

func TestSingleQuotedString(t *testing.T) {
	assertTypes(t, `'hello'`, String)
	assertTexts(t, `'it''s'`, `'it''s'`)
	assertTexts(t, `''`, `''`)
}

func TestEscapeString(t *testing.T) {
	assertTypes(t, `E'line\nbreak'`, String)
	assertTexts(t, `e'a\'b' x`, `e'a\'b'`, `x`)
}

func TestSemicolonInsideString(t *testing.T) {
	noSemicolon(t, `'a ; b'`)
	noSemicolon(t, `E'\'; x'`)
}

func TestUnterminatedString(t *testing.T) {
	assertTypes(t, `'abc ;`, String)
}

// ── Dollar-quoted strings ─────────────────────────────────────────────────────

func TestDollarQuote(t *testing.T) {
	assertTypes(t, `$$hello$$`, String)
	assertTypes(t, `$body$x := 1;$body$`, String)
	noSemicolon(t, `$body$x := 1;$body$`)
}

func TestDollarQuotedNested(t *testing.T) {
	assertTypes(t, `$outer$outer $inner$ still $inner$ outer$outer$`, String)
}

func TestBareDollar(t *testing.T) {
	assertTypes(t, `$ x`, TokenType('$'), Ident)
}

// ── Identifiers ───────────────────────────────────────────────────────────────

func TestDoubleQuotedIdent(t *testing.T) {
	assertTypes(t, `"My;Table"`, Ident)
	assertTexts(t, `"it""s"`, `"it""s"`)
}

func TestIdentPreservesCase(t *testing.T) {
	tok := first("SeLeCt")
	if tok.Type != Ident || tok.Text != "SeLeCt" {
		t.Fatalf("got %v %q", tok.Type, tok.Text)
	}
	if !tok.Is("select") {
		t.Fatal("Is must ignore case")
	}
}

func TestUnicodeIdent(t *testing.T) {
	assertTexts(t, "café x", "café", "x")
}

// ── Numbers and parameters ───────────────────────────────────────────────────

func TestNumbers(t *testing.T) {
	for _, src := range []string{`42`, `1_000`, `3.14`, `.5`, `1e5`, `2.5E-3`} {
		assertTypes(t, src, Number)
		assertTexts(t, src, src)
	}
}

func TestDotDotNotFloat(t *testing.T) {
	assertTypes(t, `1..2`, Number, DotDot, Number)
}

func TestParam(t *testing.T) {
	assertTypes(t, `$1 $42`, Param, Param)
}

// ── Host variables ───────────────────────────────────────────────────────────

func TestHostVar(t *testing.T) {
	assertTypes(t, `:customer_id`, HostVar)
	tok := first(`:customer_id`)
	if tok.Text != ":customer_id" || tok.HostVarName() != "customer_id" || tok.Pos != 0 {
		t.Fatalf("got %+v", tok)
	}
}

func TestHostVarWithIndicator(t *testing.T) {
	assertTypes(t, `:name:name_ind`, HostVar, HostVar)
	assertTexts(t, `:name:name_ind`, ":name", ":name_ind")
}

func TestColonForms(t *testing.T) {
	assertTypes(t, `a::int`, Ident, Typecast, Ident)
	assertTypes(t, `x := 1`, Ident, ColonEquals, Number)
	assertTypes(t, `: x`, TokenType(':'), Ident)
	assertTypes(t, `:1`, TokenType(':'), Number)
}

func TestHostVarInsideString(t *testing.T) {
	assertTypes(t, `':name'`, String)
}

func TestHostVarNameOfOtherToken(t *testing.T) {
	if got := first("abc").HostVarName(); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

// ── Operators ────────────────────────────────────────────────────────────────

func TestComparisonOperators(t *testing.T) {
	assertTypes(t, `a <> b`, Ident, NotEquals, Ident)
	assertTypes(t, `a != b`, Ident, NotEquals, Ident)
	assertTypes(t, `a <= b`, Ident, LessEquals, Ident)
	assertTypes(t, `a >= b`, Ident, GreaterEquals, Ident)
}

func TestSingleCharOperators(t *testing.T) {
	assertTypes(t, `a=b`, Ident, TokenType('='), Ident)
	assertTypes(t, `(a,b);`, TokenType('('), Ident, TokenType(','), Ident, TokenType(')'), TokenType(';'))
}

func TestTrailingMinusSplit(t *testing.T) {
	assertTexts(t, `a=-1`, "a", "=", "-", "1")
}

func TestOperatorStopsAtComment(t *testing.T) {
	assertTypes(t, `a+-- c`, Ident, TokenType('+'), Comment)
}

func TestMultiCharOperator(t *testing.T) {
	assertTypes(t, `a @> b`, Ident, Op, Ident)
	assertTypes(t, `a || b`, Ident, Op, Ident)
}

// ── Ranges and positions ─────────────────────────────────────────────────────

func TestLexerRangeKeepsAbsoluteOffsets(t *testing.T) {
	src := "int x; EXEC SQL COMMIT; tail"
	start := strings.Index(src, "EXEC")
	limit := strings.Index(src, " tail")
	toks := NewLexerRange(src, start, limit).ScanAll()
	if len(toks) != 4 {
		t.Fatalf("got %d tokens: %v", len(toks), toks)
	}
	if toks[0].Pos != start || toks[3].End() != limit {
		t.Fatalf("offsets not absolute: %+v", toks)
	}
}

func TestLexerRangeClampsBounds(t *testing.T) {
	if toks := NewLexerRange("abc", 5, 100).ScanAll(); len(toks) != 0 {
		t.Fatalf("got %v", toks)
	}
	assertTexts(t, "abc", "abc")
	if toks := NewLexerRange("abc def", -3, 3).ScanAll(); len(toks) != 1 || toks[0].Text != "abc" {
		t.Fatalf("got %v", toks)
	}
}

func TestTokenTypeString(t *testing.T) {
	if HostVar.String() != "HostVar" || TokenType(';').String() != ";" || EOF.String() != "EOF" {
		t.Fatal("unexpected TokenType names")
	}
}
