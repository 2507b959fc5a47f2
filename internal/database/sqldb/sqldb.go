// Package sqldb adapts a database/sql pool to database.DB. The MySQL,
// SQLite and SQL Server drivers share it and only contribute their DSN
// handling and native error mapping.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
)

// MapErrorFunc translates a driver-native error into *errs.Error.
// It is only called with a non-nil err.
type MapErrorFunc func(err error, msg string) *errs.Error

// DB implements database.DB on top of *sql.DB.
// It is safe for concurrent use by multiple goroutines.
type DB struct {
	db      *sql.DB
	driver  database.Driver
	mapErr  MapErrorFunc
	closing sync.Once
}

// New wraps an already opened pool. A nil mapErr falls back to MapError.
func New(db *sql.DB, driver database.Driver, mapErr MapErrorFunc) *DB {
	if mapErr == nil {
		mapErr = MapError
	}
	return &DB{db: db, driver: driver, mapErr: mapErr}
}

// Open opens a pool with the given database/sql driver name, applies the
// pool settings from cfg and pings it before returning.
func Open(ctx context.Context, sqlDriver, dsn string, cfg *database.Config, mapErr MapErrorFunc) (*DB, error) {
	pool, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	pool.SetMaxOpenConns(int(database.WithDefault(cfg.MaxConns, 8)))
	pool.SetMaxIdleConns(int(database.WithDefault(cfg.MinConns, 1)))
	pool.SetConnMaxLifetime(cfg.MaxConnLifetime)
	pool.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := New(pool, cfg.Driver, mapErr)

	pingCtx, cancel := context.WithTimeout(ctx, database.WithDefault(cfg.ConnectTimeout, defaultConnectTimeout))
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return d, nil
}

// --- database.DB implementation ---

func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return d.mapErr(err, "ping failed")
	}
	return nil
}

// Close closes the pool once; later calls return immediately.
func (d *DB) Close() {
	d.closing.Do(func() {
		_ = d.db.Close()
	})
}

func (d *DB) Driver() database.Driver { return d.driver }

func (d *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, d.mapErr(err, "query failed")
	}
	return &sqlRows{rows: rows, mapErr: d.mapErr}, nil
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) (database.Row, error) {
	return &sqlRow{row: d.db.QueryRowContext(ctx, query, args...), mapErr: d.mapErr}, nil
}

// SQL exposes the underlying pool.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// --- sql.DB type wrappers ---

type sqlRows struct {
	rows   *sql.Rows
	mapErr MapErrorFunc
}

func (r *sqlRows) Next() bool                 { return r.rows.Next() }
func (r *sqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *sqlRows) Close()                     { _ = r.rows.Close() }

func (r *sqlRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.mapErr(err, "failed to scan row")
	}
	return nil
}

func (r *sqlRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return r.mapErr(err, "error iterating rows")
	}
	return nil
}

type sqlRow struct {
	row    *sql.Row
	mapErr MapErrorFunc
}

func (r *sqlRow) Scan(dest ...any) error {
	if err := r.row.Scan(dest...); err != nil {
		return r.mapErr(err, "failed to scan row")
	}
	return nil
}

// --- error mapping ---

// MapError is the driver-independent part of error translation: context
// errors become timeouts, sql.ErrNoRows becomes not-found and anything else
// is reported as a query failure.
func MapError(err error, msg string) *errs.Error {
	if mapped := MapCommon(err, msg); mapped != nil {
		return mapped
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// MapCommon handles the cases every database/sql driver shares and returns
// nil when the error needs driver-specific handling.
func MapCommon(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}
	return nil
}
