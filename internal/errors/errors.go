package errors

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// FileError represents a failure reading or writing a source file
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError
func NewFileError(path, op string, err error) *FileError {
	return &FileError{
		Path: path,
		Op:   op,
		Err:  err,
	}
}

// ConnectionError represents PostgreSQL connection failure
type ConnectionError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *ConnectionError) Error() string {
	var b strings.Builder
	b.WriteString("database connection failed: ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Suggestion != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(message, suggestion string, err error) *ConnectionError {
	return &ConnectionError{
		Message:    message,
		Suggestion: suggestion,
		Err:        err,
	}
}

// StatementError represents an extracted statement the server rejected
type StatementError struct {
	File     string
	Line     int
	Column   int
	SQL      string
	SQLError *pgconn.PgError // PostgreSQL error details
	Err      error           // set when the failure is not a server error
}

func (e *StatementError) Error() string {
	if e.SQLError != nil {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", e.File, e.Line, e.Column, e.SQLError.Code, e.SQLError.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s:%d:%d: %v", e.File, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s:%d:%d: statement rejected", e.File, e.Line, e.Column)
}

func (e *StatementError) Unwrap() error {
	if e.SQLError != nil {
		return e.SQLError
	}
	return e.Err
}

// NewStatementError creates a new StatementError
func NewStatementError(file string, line, column int, sql string, sqlError *pgconn.PgError) *StatementError {
	return &StatementError{
		File:     file,
		Line:     line,
		Column:   column,
		SQL:      sql,
		SQLError: sqlError,
	}
}
