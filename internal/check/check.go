// Package check validates the SQL of EXEC SQL statements against a live
// PostgreSQL server. Statements are rewritten with PlaceholderSQL and
// described, never executed.
package check

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/annotation"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/discovery"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/errors"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/hostvar"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/logger"
	"github.com/spburtsev/db2-embedded-sql-syntax-c-cpp/internal/parser"
)

// Describer prepares a statement without executing it.
type Describer interface {
	Describe(ctx context.Context, sql string) (*pgconn.StatementDescription, error)
}

// Status is the outcome of checking one statement.
type Status string

const (
	StatusOK       Status = "ok"
	StatusRejected Status = "rejected"
	StatusSkipped  Status = "skipped"
)

// Finding is the result for one EXEC SQL statement.
type Finding struct {
	Path     string               `json:"path"`
	Line     int                  `json:"line"`
	Column   int                  `json:"column"`
	Function string               `json:"function"`
	Kind     parser.StatementKind `json:"kind"`
	SQL      string               `json:"sql,omitempty"` // rewritten text sent to the server
	Params   []string             `json:"params,omitempty"`
	Columns  int                  `json:"columns"`
	Status   Status               `json:"status"`
	Err      error                `json:"-"`
}

// Checker checks the statements of files against a server
type Checker struct {
	db      Describer
	verbose bool
}

// NewChecker creates a new checker
func NewChecker(db Describer, verbose bool) *Checker {
	return &Checker{db: db, verbose: verbose}
}

// CheckFile checks every statement of file in source order. Server errors
// are reported as rejected findings; any other failure aborts the file.
func (c *Checker) CheckFile(ctx context.Context, file *discovery.DiscoveredFile) ([]Finding, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, errors.NewFileError(file.Path, "read", err)
	}
	return c.CheckText(ctx, file.RelativePath, string(data))
}

// CheckText checks the statements of text, reported under path.
func (c *Checker) CheckText(ctx context.Context, path, text string) ([]Finding, error) {
	lines := annotation.NewLineIndex(text)

	var findings []Finding
	for _, a := range hostvar.AnalyzeDocument(text) {
		for _, st := range a.Statements {
			line, col := lines.Position(st.Start)
			f := Finding{
				Path:     path,
				Line:     line,
				Column:   col,
				Function: a.Scope.Name,
				Kind:     st.Kind,
			}

			sql, names, ok := st.PlaceholderSQL()
			if !ok {
				f.Status = StatusSkipped
				findings = append(findings, f)
				continue
			}
			f.SQL = sql
			f.Params = names

			desc, err := c.db.Describe(ctx, sql)
			if err != nil {
				var pgErr *pgconn.PgError
				if !stderrors.As(err, &pgErr) {
					return findings, fmt.Errorf("failed to describe statement at %s:%d:%d: %w", path, line, col, err)
				}
				f.Status = StatusRejected
				f.Err = errors.NewStatementError(path, line, col, sql, pgErr)
				if c.verbose {
					logger.Debug("%v", f.Err)
				}
			} else {
				f.Status = StatusOK
				f.Columns = len(desc.Fields)
				if n := len(desc.ParamOIDs); n != len(names) {
					logger.Warn("%s:%d:%d: server reports %d parameters, statement binds %d host variables", path, line, col, n, len(names))
				}
			}
			findings = append(findings, f)
		}
	}
	return findings, nil
}

// Summary counts findings per status.
type Summary struct {
	Total    int
	OK       int
	Rejected int
	Skipped  int
}

// Summarize counts findings per status.
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Status {
		case StatusOK:
			s.OK++
		case StatusRejected:
			s.Rejected++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// ExitCode is 1 when any statement was rejected
func (s Summary) ExitCode() int {
	if s.Rejected > 0 {
		return 1
	}
	return 0
}
