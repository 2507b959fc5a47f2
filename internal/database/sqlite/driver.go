// Package sqlite opens SQLite database files through the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/database/sqldb"
	"github.com/koustreak/automodel/internal/errs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver is a SQLite implementation of database.DB.
type Driver struct {
	*sqldb.DB
}

// New opens the database file named by cfg.Database (or cfg.DSN) read-only.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	dsn := buildDSN(cfg)
	if dsn == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite needs a database file path")
	}

	pool := *cfg
	pool.MaxConns = database.WithDefault(cfg.MaxConns, 4)

	db, err := sqldb.Open(ctx, "sqlite", dsn, &pool, mapError)
	if err != nil {
		return nil, err
	}
	return &Driver{DB: db}, nil
}

// buildDSN turns a plain file path into a read-only file: URI. DSNs that
// already use the file: scheme pass through untouched.
func buildDSN(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Database == "" {
		return ""
	}
	if strings.HasPrefix(cfg.Database, "file:") {
		return cfg.Database
	}
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "busy_timeout(5000)")
	return fmt.Sprintf("file:%s?%s", cfg.Database, q.Encode())
}

// --- error mapping ---

func mapError(err error, msg string) *errs.Error {
	if mapped := sqldb.MapCommon(err, msg); mapped != nil {
		return mapped
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return errs.Wrap(classifyCode(sqliteErr.Code()), fmt.Sprintf("%s: %s", msg, sqliteErr.Error()), err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

// classifyCode maps primary SQLite result codes to ErrKind.
func classifyCode(code int) errs.ErrKind {
	switch code & 0xff {
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		return errs.ErrKindConnectionFailed
	case sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH, sqlite3.SQLITE_READONLY:
		return errs.ErrKindPermissionDenied
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_INTERRUPT:
		return errs.ErrKindTimeout
	default:
		return errs.ErrKindQueryFailed
	}
}
