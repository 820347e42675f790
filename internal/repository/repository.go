package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a referenced row does not exist. Callers abort
// without writing anything.
var ErrNotFound = errors.New("not found")

// DBTX lets repository writes run either on the shared pool or inside a
// service-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
