package mysql

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := &database.Config{User: "root", Password: "secret", Database: "shop", ConnectTimeout: 3 * time.Second}
	dsn, err := buildDSN(cfg)
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "127.0.0.1:3306", parsed.Addr)
	assert.Equal(t, "shop", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 3*time.Second, parsed.Timeout)
}

func TestBuildDSN_ExplicitFillsDatabase(t *testing.T) {
	cfg := &database.Config{DSN: "app:pw@tcp(db:3306)/inventory"}
	dsn, err := buildDSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.DSN, dsn)
	assert.Equal(t, "inventory", cfg.Database)

	_, err = buildDSN(&database.Config{DSN: "not a dsn"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestWithPoolDefaults(t *testing.T) {
	cfg := &database.Config{MaxConns: 3}
	out := withPoolDefaults(cfg)

	assert.Equal(t, int32(3), out.MaxConns)
	assert.Equal(t, int32(defaultMaxIdleConns), out.MinConns)
	assert.Equal(t, defaultConnMaxLifetime, out.MaxConnLifetime)
	assert.Zero(t, cfg.MinConns)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		code uint16
		want errs.ErrKind
	}{
		{1045, errs.ErrKindPermissionDenied},
		{1142, errs.ErrKindPermissionDenied},
		{1049, errs.ErrKindConnectionFailed},
		{1146, errs.ErrKindNotFound},
		{1064, errs.ErrKindQueryFailed},
	}
	for _, tt := range tests {
		got := mapError(&mysql.MySQLError{Number: tt.code, Message: "boom"}, "query")
		assert.Equal(t, tt.want, got.Kind, tt.code)
	}

	assert.Equal(t, errs.ErrKindConnectionFailed, mapError(errors.New("i/o timeout"), "ping").Kind)
}
