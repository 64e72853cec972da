package db

import (
	"context"
	"database/sql"
)

// DBTX is what repositories run queries against. Both *sql.DB and *sql.Tx
// satisfy it, so the same repository works inside and outside a unit of
// work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
