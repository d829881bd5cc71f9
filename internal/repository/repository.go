// Package repository holds the Postgres, Redis and Elasticsearch backed stores
// the readiness workers read and write.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"rental-readiness-workers/internal/common/errors"
)

// Querier is the subset of *sql.DB the stores use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func queryError(op string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(op)
	}
	return errors.NewQueryExecutionFailedError(op, err)
}

func insertError(op string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(op)
	}
	return errors.NewDatabaseInsertFailedError(err)
}

// jsonColumn marshals v for a JSONB column; empty values are stored as NULL.
func jsonColumn(v interface{}, empty bool) (interface{}, error) {
	if empty {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
