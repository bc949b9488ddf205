package check

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/errors"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/parser"
)

// fakeDB rejects any statement mentioning "missing" and fails on "offline".
type fakeDB struct {
	seen []string
}

func (f *fakeDB) Describe(_ context.Context, sql string) (*pgconn.StatementDescription, error) {
	f.seen = append(f.seen, sql)
	switch {
	case strings.Contains(sql, "missing"):
		return nil, &pgconn.PgError{Code: "42P01", Message: `relation "missing" does not exist`}
	case strings.Contains(sql, "offline"):
		return nil, stderrors.New("connection reset")
	}
	return &pgconn.StatementDescription{
		SQL:       sql,
		ParamOIDs: make([]uint32, strings.Count(sql, "$")),
		Fields:    make([]pgconn.FieldDescription, 1),
	}, nil
}

const program = `void f(void) {
    EXEC SQL BEGIN DECLARE SECTION;
    int id;
    char name[20];
    EXEC SQL END DECLARE SECTION;
    EXEC SQL SELECT name INTO :name FROM people WHERE id = :id;
    EXEC SQL DELETE FROM missing WHERE id = :id;
    EXEC SQL COMMIT;
}
`

func TestCheckText(t *testing.T) {
	db := &fakeDB{}
	findings, err := NewChecker(db, false).CheckText(context.Background(), "p.sqc", program)
	require.NoError(t, err)
	require.Len(t, findings, 3)

	ok := findings[0]
	assert.Equal(t, StatusOK, ok.Status)
	assert.Equal(t, parser.KindSelect, ok.Kind)
	assert.Equal(t, "SELECT name FROM people WHERE id = $1", ok.SQL)
	assert.Equal(t, []string{"id"}, ok.Params)
	assert.Equal(t, 6, ok.Line)
	assert.Equal(t, 5, ok.Column)
	assert.Equal(t, "f", ok.Function)
	assert.Equal(t, 1, ok.Columns)

	rejected := findings[1]
	assert.Equal(t, StatusRejected, rejected.Status)
	var stErr *errors.StatementError
	require.ErrorAs(t, rejected.Err, &stErr)
	assert.Equal(t, `p.sqc:7:5: [42P01] relation "missing" does not exist`, stErr.Error())
	var pgErr *pgconn.PgError
	assert.ErrorAs(t, rejected.Err, &pgErr)

	assert.Equal(t, StatusSkipped, findings[2].Status)
	assert.Equal(t, parser.KindCommit, findings[2].Kind)
	assert.Len(t, db.seen, 2)

	s := Summarize(findings)
	assert.Equal(t, Summary{Total: 3, OK: 1, Rejected: 1, Skipped: 1}, s)
	assert.Equal(t, 1, s.ExitCode())
}

func TestCheckText_TransportError(t *testing.T) {
	src := "void g(void) { EXEC SQL SELECT 1 FROM offline; }"
	_, err := NewChecker(&fakeDB{}, false).CheckText(context.Background(), "g.sqc", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "g.sqc:1:16")
}

func TestCheckText_NoStatements(t *testing.T) {
	findings, err := NewChecker(&fakeDB{}, false).CheckText(context.Background(), "x.sqc", "int main() { return 0; }")
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Equal(t, 0, Summarize(findings).ExitCode())
}

func TestCheckFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.sqc")
	require.NoError(t, os.WriteFile(path, []byte(program), 0644))

	findings, err := NewChecker(&fakeDB{}, false).CheckFile(context.Background(), &discovery.DiscoveredFile{Path: path, RelativePath: "p.sqc"})
	require.NoError(t, err)
	assert.Len(t, findings, 3)

	_, err = NewChecker(&fakeDB{}, false).CheckFile(context.Background(), &discovery.DiscoveredFile{Path: path + ".gone"})
	var fileErr *errors.FileError
	assert.ErrorAs(t, err, &fileErr)
}
