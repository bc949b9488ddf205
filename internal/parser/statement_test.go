package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseStatement_Kinds(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want StatementKind
	}{
		{"begin declare", "EXEC SQL BEGIN DECLARE SECTION;", KindBeginDeclare},
		{"end declare", "exec sql end declare section ;", KindEndDeclare},
		{"marker with comment", "EXEC /* x */ SQL BEGIN\n  DECLARE SECTION;", KindBeginDeclare},
		{"marker with trailing words", "EXEC SQL BEGIN DECLARE SECTION FOO;", KindOther},
		{"select", "EXEC SQL SELECT 1 INTO :x;", KindSelect},
		{"with", "EXEC SQL WITH a AS (SELECT 1) SELECT * INTO :x FROM a;", KindSelect},
		{"insert", "EXEC SQL INSERT INTO t VALUES (:v);", KindInsert},
		{"update", "EXEC SQL UPDATE t SET a = :a;", KindUpdate},
		{"delete", "EXEC SQL DELETE FROM t WHERE id = :id;", KindDelete},
		{"declare cursor", "EXEC SQL DECLARE c1 CURSOR FOR SELECT id FROM t;", KindDeclareCursor},
		{"declare other", "EXEC SQL DECLARE x TABLE;", KindOther},
		{"open", "EXEC SQL OPEN c1;", KindOpen},
		{"fetch", "EXEC SQL FETCH c1 INTO :id;", KindFetch},
		{"close", "EXEC SQL CLOSE c1;", KindClose},
		{"prepare", "EXEC SQL PREPARE s1 FROM :stmt;", KindPrepare},
		{"execute", "EXEC SQL EXECUTE s1 USING :a;", KindExecute},
		{"commit", "EXEC SQL COMMIT WORK;", KindCommit},
		{"rollback", "EXEC SQL ROLLBACK;", KindRollback},
		{"connect", "EXEC SQL CONNECT TO sample;", KindConnect},
		{"include", "EXEC SQL INCLUDE SQLCA;", KindInclude},
		{"whenever", "EXEC SQL WHENEVER SQLERROR GOTO err;", KindWhenever},
		{"empty", "EXEC SQL ;", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := ParseStatement(tt.sql, 0, len(tt.sql))
			if stmt == nil {
				t.Fatal("ParseStatement() returned nil")
			}
			if stmt.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", stmt.Kind, tt.want)
			}
		})
	}
}

func TestParseStatement_Span(t *testing.T) {
	src := "x = 1; EXEC SQL SELECT ';' INTO :v FROM t; -- after"
	start := strings.Index(src, "EXEC")
	stmt := ParseStatement(src, start, len(src))
	if stmt == nil {
		t.Fatal("ParseStatement() returned nil")
	}
	if stmt.Start != start {
		t.Errorf("Start = %d, want %d", stmt.Start, start)
	}
	wantEnd := strings.Index(src, "; --") + 1
	if stmt.End != wantEnd {
		t.Errorf("End = %d, want %d", stmt.End, wantEnd)
	}
	if stmt.Text != src[start:wantEnd] {
		t.Errorf("Text = %q", stmt.Text)
	}
	if last := stmt.Tokens[len(stmt.Tokens)-1]; last.Type != TokenType(';') {
		t.Errorf("last token = %v, want ';'", last)
	}
}

func TestParseStatement_Unterminated(t *testing.T) {
	tests := []string{
		"EXEC SQL SELECT 1",
		"EXEC SQL SELECT 'x",
		"EXEC SQL SELECT 1 /* never closed",
	}
	for _, src := range tests {
		if stmt := ParseStatement(src, 0, len(src)); stmt != nil {
			t.Errorf("src=%q: expected nil, got %+v", src, stmt)
		}
	}
}

func TestParseStatement_FallsBackToFirstSemicolon(t *testing.T) {
	tests := []struct {
		src    string
		vars   []string
		ending string
	}{
		{"EXEC SQL SELECT :a, ';", []string{"a"}, "EXEC SQL SELECT :a, ';"},
		{"EXEC SQL SELECT :a /* ; */ x", []string{"a"}, "EXEC SQL SELECT :a /* ;"},
		{"EXEC SQL SELECT :a -- ;\n", []string{"a"}, "EXEC SQL SELECT :a -- ;"},
	}
	for _, tt := range tests {
		stmt := ParseStatement(tt.src, 0, len(tt.src))
		if stmt == nil {
			t.Errorf("src=%q: statement dropped", tt.src)
			continue
		}
		if stmt.Text != tt.ending {
			t.Errorf("src=%q: Text = %q, want %q", tt.src, stmt.Text, tt.ending)
		}
		var names []string
		for _, hv := range stmt.HostVars {
			names = append(names, hv.Name)
		}
		if !reflect.DeepEqual(names, tt.vars) {
			t.Errorf("src=%q: HostVars = %v, want %v", tt.src, names, tt.vars)
		}
		if last := stmt.Tokens[len(stmt.Tokens)-1]; last.Type != TokenType(';') || stmt.End != last.End() {
			t.Errorf("src=%q: last token = %+v, End = %d", tt.src, last, stmt.End)
		}
	}
}

func TestParseStatement_CComments(t *testing.T) {
	src := "EXEC SQL SELECT name /* see /* note */ INTO :name FROM t // customer's\n WHERE id = :id; x = 'y';"
	stmt := ParseStatement(src, 0, len(src))
	if stmt == nil {
		t.Fatal("statement dropped")
	}
	if want := strings.Index(src, "; x") + 1; stmt.End != want {
		t.Errorf("End = %d, want %d", stmt.End, want)
	}
	if len(stmt.HostVars) != 2 || stmt.HostVars[0].Name != "name" || stmt.HostVars[1].Name != "id" {
		t.Errorf("HostVars = %+v", stmt.HostVars)
	}
}

func TestParseStatement_RespectsLimit(t *testing.T) {
	src := "EXEC SQL COMMIT } ;"
	limit := strings.Index(src, "}")
	if stmt := ParseStatement(src, 0, limit); stmt != nil {
		t.Fatalf("statement read past limit: %+v", stmt)
	}
}

func TestParseStatement_HostVars(t *testing.T) {
	src := "EXEC SQL INSERT INTO t VALUES (';', :v);"
	stmt := ParseStatement(src, 0, len(src))
	want := []HostVarRef{{Name: "v", Pos: strings.Index(src, ":v")}}
	if !reflect.DeepEqual(stmt.HostVars, want) {
		t.Fatalf("HostVars = %+v, want %+v", stmt.HostVars, want)
	}
	if got := stmt.HostVars[0].NameOffset(); got != strings.Index(src, "v)") {
		t.Errorf("NameOffset = %d", got)
	}
}

func TestParseStatement_IgnoresTypecastAndLiterals(t *testing.T) {
	src := "EXEC SQL SELECT a::text, ':fake' /* :c */ INTO :out FROM t;"
	stmt := ParseStatement(src, 0, len(src))
	if len(stmt.HostVars) != 1 || stmt.HostVars[0].Name != "out" {
		t.Fatalf("HostVars = %+v", stmt.HostVars)
	}
	if !stmt.HostVars[0].Output {
		t.Error("INTO target must be marked as output")
	}
}

func TestParseStatement_Indicators(t *testing.T) {
	src := "EXEC SQL SELECT name INTO :name:name_ind, :city INDICATOR :city_ind FROM t WHERE id = :id;"
	stmt := ParseStatement(src, 0, len(src))
	type flags struct {
		name      string
		indicator bool
		output    bool
	}
	var got []flags
	for _, hv := range stmt.HostVars {
		got = append(got, flags{hv.Name, hv.Indicator, hv.Output})
	}
	want := []flags{
		{"name", false, true},
		{"name_ind", true, true},
		{"city", false, true},
		{"city_ind", true, true},
		{"id", false, false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got  %+v\nwant %+v", got, want)
	}
}

func TestPlaceholderSQL(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantSQL   string
		wantNames []string
		wantOK    bool
	}{
		{
			name:      "select into",
			sql:       "EXEC SQL SELECT name INTO :name FROM t WHERE id = :id;",
			wantSQL:   "SELECT name FROM t WHERE id = $1",
			wantNames: []string{"id"},
			wantOK:    true,
		},
		{
			name:      "multi-line select with indicators",
			sql:       "EXEC SQL SELECT a, b\n  INTO :a:a_ind, :b INDICATOR :b_ind\n  FROM t -- trailing\n  WHERE x = :x AND y = :y;",
			wantSQL:   "SELECT a, b FROM t WHERE x = $1 AND y = $2",
			wantNames: []string{"x", "y"},
			wantOK:    true,
		},
		{
			name:      "insert keeps literals",
			sql:       "EXEC SQL INSERT INTO t VALUES (';', :v);",
			wantSQL:   "INSERT INTO t VALUES (';', $1)",
			wantNames: []string{"v"},
			wantOK:    true,
		},
		{
			name:      "repeated name shares parameter",
			sql:       "EXEC SQL UPDATE t SET a = :v WHERE b = :v AND c = :w;",
			wantSQL:   "UPDATE t SET a = $1 WHERE b = $1 AND c = $2",
			wantNames: []string{"v", "w"},
			wantOK:    true,
		},
		{
			name:      "update with indicator",
			sql:       "EXEC SQL UPDATE t SET a = :a:a_ind;",
			wantSQL:   "UPDATE t SET a = $1",
			wantNames: []string{"a"},
			wantOK:    true,
		},
		{
			name:      "delete without host vars",
			sql:       "exec sql delete from t;",
			wantSQL:   "delete from t",
			wantNames: nil,
			wantOK:    true,
		},
		{
			name:   "fetch is not checkable",
			sql:    "EXEC SQL FETCH c1 INTO :id;",
			wantOK: false,
		},
		{
			name:   "marker is not checkable",
			sql:    "EXEC SQL BEGIN DECLARE SECTION;",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := ParseStatement(tt.sql, 0, len(tt.sql))
			if stmt == nil {
				t.Fatal("ParseStatement() returned nil")
			}
			sql, names, ok := stmt.PlaceholderSQL()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	src := `
-- EXEC SQL COMMIT;
SELECT 'EXEC SQL ROLLBACK;';
EXEC SQL CONNECT TO db;
EXEC SQL SELECT 1 INTO :x;
EXEC SQL DISCONNECT`
	stmts := ParseStatements(src)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].Kind != KindConnect || stmts[1].Kind != KindSelect {
		t.Errorf("kinds = %v, %v", stmts[0].Kind, stmts[1].Kind)
	}
}

func TestStatementKindText(t *testing.T) {
	b, err := KindDeclareCursor.MarshalText()
	if err != nil || string(b) != "declare-cursor" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	if StatementKind(99).String() != "other" {
		t.Error("unknown kinds must read as other")
	}
}
