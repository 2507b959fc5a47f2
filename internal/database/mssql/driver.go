// Package mssql opens SQL Server connections through go-mssqldb.
package mssql

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/database/sqldb"
	"github.com/koustreak/automodel/internal/errs"
	mssqldb "github.com/microsoft/go-mssqldb"
)

const defaultPort = 1433

// Driver is a SQL Server implementation of database.DB.
type Driver struct {
	*sqldb.DB
}

// New opens a SQL Server pool and pings it.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sqldb.Open(ctx, "sqlserver", buildDSN(cfg), cfg, mapError)
	if err != nil {
		return nil, err
	}
	return &Driver{DB: db}, nil
}

// buildDSN builds a sqlserver:// URL. An explicit DSN wins.
func buildDSN(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	if cfg.ConnectTimeout > 0 {
		q.Set("dial timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	if cfg.SSLMode == "disable" {
		q.Set("encrypt", "disable")
	}
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", host, database.WithDefault(cfg.Port, defaultPort)),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// --- error mapping ---

func mapError(err error, msg string) *errs.Error {
	if mapped := sqldb.MapCommon(err, msg); mapped != nil {
		return mapped
	}

	var msErr mssqldb.Error
	if errors.As(err, &msErr) {
		return errs.Wrap(classifyNumber(msErr.Number), fmt.Sprintf("%s: %s", msg, msErr.Message), err)
	}
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyNumber maps SQL Server error numbers to ErrKind.
func classifyNumber(n int32) errs.ErrKind {
	switch n {
	case 229, 230, 262, 297, 300:
		return errs.ErrKindPermissionDenied
	case 18456, 4060:
		return errs.ErrKindConnectionFailed
	case 208:
		return errs.ErrKindNotFound
	default:
		return errs.ErrKindQueryFailed
	}
}
