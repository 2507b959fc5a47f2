package mysql

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 10 * time.Minute
	defaultPort            = 3306
)

// withPoolDefaults fills unset pool settings with MySQL-friendly values.
func withPoolDefaults(cfg *database.Config) *database.Config {
	out := *cfg
	out.MaxConns = database.WithDefault(cfg.MaxConns, defaultMaxOpenConns)
	out.MinConns = database.WithDefault(cfg.MinConns, defaultMaxIdleConns)
	out.MaxConnLifetime = database.WithDefault(cfg.MaxConnLifetime, defaultConnMaxLifetime)
	out.MaxConnIdleTime = database.WithDefault(cfg.MaxConnIdleTime, defaultConnMaxIdleTime)
	return &out
}

// buildDSN constructs the MySQL DSN string. When an explicit DSN is given it
// is parsed so the schema name the catalog queries filter on is known.
func buildDSN(cfg *database.Config) (string, error) {
	if cfg.DSN != "" {
		parsed, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql dsn", err)
		}
		if cfg.Database == "" {
			cfg.Database = parsed.DBName
		}
		return cfg.DSN, nil
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", hostOrLocal(cfg.Host), database.WithDefault(cfg.Port, defaultPort))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc.FormatDSN(), nil
}

func hostOrLocal(host string) string {
	if host == "" {
		return "127.0.0.1"
	}
	return host
}
