// Package sqldb implements the storage contract over database/sql. The SQLite
// and PostgreSQL stores share these queries and differ only in their Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/storage"
)

// Dialect captures what differs between the supported SQL engines.
type Dialect interface {
	// Rebind rewrites ? placeholders into the engine's native form.
	Rebind(query string) string
	// TxOptions returns the options every mutation transaction is opened with.
	TxOptions() *sql.TxOptions
	// LockClause is appended to the habit row read that starts a mutation.
	LockClause() string
	// IsConflict reports whether a driver error is a serialization failure,
	// deadlock or lock timeout.
	IsConflict(err error) bool
}

// DB runs the shared queries against an open *sql.DB.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{db: db, dialect: dialect}
}

// SQL returns the underlying connection pool.
func (d *DB) SQL() *sql.DB {
	return d.db
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction opened with the dialect's options.
func (d *DB) WithTx(ctx context.Context, fn func(storage.Tx) error) (err error) {
	sqlTx, err := d.db.BeginTx(ctx, d.dialect.TxOptions())
	if err != nil {
		return d.classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: sqlTx, dialect: d.dialect}); err != nil {
		_ = sqlTx.Rollback()
		return d.classify(err)
	}
	if err := sqlTx.Commit(); err != nil {
		return d.classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// classify marks driver-level contention as ErrConcurrencyConflict so the
// caller can retry the whole unit of work.
func (d *DB) classify(err error) error {
	if err == nil || errors.Is(err, apperrors.ErrConcurrencyConflict) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || d.dialect.IsConflict(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrConcurrencyConflict, err)
	}
	return err
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.dialect.Rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.dialect.Rebind(query), args...)
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.dialect.Rebind(query), args...)
}
