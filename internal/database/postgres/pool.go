package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/automodel/internal/database"
	"github.com/koustreak/automodel/internal/errs"
)

const (
	defaultMaxConns    = 10
	defaultMinConns    = 2
	defaultPort        = 5432
	defaultConnTimeout = 5 * time.Second
)

// buildPool creates a pgxpool from the given config.
func buildPool(ctx context.Context, cfg *database.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid postgres config", err)
	}

	poolCfg.MaxConns = database.WithDefault(cfg.MaxConns, defaultMaxConns)
	poolCfg.MinConns = database.WithDefault(cfg.MinConns, defaultMinConns)
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolCfg.ConnConfig.ConnectTimeout = database.WithDefault(cfg.ConnectTimeout, defaultConnTimeout)

	// catalog queries need to know which database the DSN points at
	if cfg.Database == "" {
		cfg.Database = poolCfg.ConnConfig.Database
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}

	return pool, nil
}

// buildDSN constructs the postgres connection string. An explicit DSN wins.
func buildDSN(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", hostOrLocal(cfg.Host), database.WithDefault(cfg.Port, defaultPort)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

func hostOrLocal(host string) string {
	if host == "" {
		return "localhost"
	}
	return host
}
